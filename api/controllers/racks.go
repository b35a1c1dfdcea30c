package controllers

import (
	"net/http"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/api/validators"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

type createRackRequest struct {
	Row      int `json:"row" validate:"required,gt=0"`
	Column   int `json:"column" validate:"required,gt=0"`
	Level    int `json:"level" validate:"required,gt=0"`
	Capacity int `json:"capacity" validate:"gte=0"`
}

func RacksCreate(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rack, err := svc.CreateRack(r.Context(), racks.CreateRackInput{
			Row:      req.Row,
			Column:   req.Column,
			Level:    req.Level,
			Capacity: req.Capacity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rack)
	}
}

func RacksList(svc racks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListRacks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
