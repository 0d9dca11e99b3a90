package controllers

import (
	"net/http"

	"github.com/angelmondragon/boutique-backend/api/responses"
	"github.com/angelmondragon/boutique-backend/api/validators"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
	"github.com/angelmondragon/boutique-backend/pkg/mondialrelay"
)

// RelayPoints searches Mondial Relay pickup points around ?postcode=.
func RelayPoints(finder mondialrelay.Finder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if finder == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("relay point search"))
			return
		}
		postcode, err := validators.RequireQuery(r, "postcode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", mondialrelay.DefaultNumResults, 1, mondialrelay.MaxNumResults)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		radius, err := validators.ParseQueryInt(r, "radius_km", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		points, err := finder.PickupPoints(r.Context(), mondialrelay.SearchRequest{
			Postcode:     postcode,
			Country:      q.Get("country"),
			DeliveryMode: q.Get("delivery_mode"),
			NumResults:   limit,
			RadiusKM:     radius,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if points == nil {
			points = []mondialrelay.PickupPoint{}
		}
		responses.WriteSuccess(w, points)
	}
}
