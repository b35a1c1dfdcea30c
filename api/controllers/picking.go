package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/api/validators"
	"github.com/raktarhub/raktarhub-backend/internal/picking"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

func PickingPlan(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.Plan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

type fulfillRequest struct {
	Items []fulfillItem `json:"items" validate:"required,min=1,dive"`
}

type fulfillItem struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

func PickingFulfill(svc picking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req fulfillRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]picking.FulfillItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, picking.FulfillItem{PartID: item.PartID, Quantity: item.Quantity})
		}

		if err := svc.Fulfill(r.Context(), id, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "fulfilled"})
	}
}
