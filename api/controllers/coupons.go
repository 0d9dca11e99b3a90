package controllers

import (
	"net/http"

	"github.com/angelmondragon/boutique-backend/api/responses"
	couponsvc "github.com/angelmondragon/boutique-backend/internal/coupons"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
)

// ListCoupons returns the user's unused, unexpired coupons.
func ListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("coupon service"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListUsable(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []couponsvc.Coupon{}
		}
		responses.WriteSuccess(w, list)
	}
}
