package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/boutique-backend/api/middleware"
	"github.com/angelmondragon/boutique-backend/api/responses"
	"github.com/angelmondragon/boutique-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/boutique-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/boutique-backend/pkg/errors"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
)

const maxCustomerNoteLen = 1000

// CheckoutContext returns everything the checkout page needs in one call.
func CheckoutContext(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("checkout service"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Context(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// CheckoutQuote prices a possibly incomplete selection.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("checkout service"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var sel checkoutsvc.Selection
		if err := validators.DecodeOptionalJSONBody(r, &sel); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), userID, sel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutSubmit places the order on the direct or delivery-batch path.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("checkout service"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var sel checkoutsvc.Selection
		if err := validators.DecodeJSONBody(r, &sel); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sel.CustomerNote = validators.SanitizeString(sel.CustomerNote, maxCustomerNoteLen)

		result, err := svc.Submit(r.Context(), userID, checkoutsvc.SubmitRequest{
			Selection:      sel,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(middleware.IdempotencyKeyHeader)),
		})
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Reason() == checkoutsvc.ReasonCheckoutInProgress {
				w.Header().Set(middleware.RetryAfterHeader, "1")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
