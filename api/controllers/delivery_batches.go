package controllers

import (
	"net/http"

	"github.com/angelmondragon/boutique-backend/api/responses"
	batchsvc "github.com/angelmondragon/boutique-backend/internal/batches"
	"github.com/angelmondragon/boutique-backend/pkg/logger"
)

// ActiveDeliveryBatch returns the user's pending batch, or null.
func ActiveDeliveryBatch(svc batchsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery batch service"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batch, err := svc.Active(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batchsvc.FromModel(batch))
	}
}
