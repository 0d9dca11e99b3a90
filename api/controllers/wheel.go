package controllers

import (
	"net/http"

	"github.com/angelmondragon/boutique-backend/api/middleware"
	"github.com/angelmondragon/boutique-backend/api/responses"
	wheelsvc "github.com/angelmondragon/boutique-backend/internal/wheel"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
)

func wheelPlayer(r *http.Request) wheelsvc.Player {
	player := wheelsvc.Player{SessionID: middleware.SessionIDFromContext(r.Context())}
	if id, ok := middleware.UserUUIDFromContext(r.Context()); ok {
		player.UserID = &id
	}
	return player
}

func WheelEligibility(svc wheelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("wheel service"))
			return
		}
		elig, err := svc.Eligibility(r.Context(), wheelPlayer(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, elig)
	}
}

func WheelSpin(svc wheelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("wheel service"))
			return
		}
		result, err := svc.Spin(r.Context(), wheelPlayer(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
