package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/api/validators"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

type receiveStockRequest struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Row      int       `json:"row" validate:"required,gt=0"`
	Column   int       `json:"column" validate:"required,gt=0"`
	Level    int       `json:"level" validate:"required,gt=0"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

func StockReceive(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req receiveStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Receive(r.Context(), stock.ReceiveInput{
			PartID:   req.PartID,
			Row:      req.Row,
			Column:   req.Column,
			Level:    req.Level,
			Quantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func StockStatus(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Status(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func StockShortages(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Shortages(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
