package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/api/validators"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

type createPartRequest struct {
	Name       string          `json:"name" validate:"required,min=1"`
	Price      decimal.Decimal `json:"price" validate:"required"`
	MaxPerRack int             `json:"max_per_rack" validate:"required,gt=0"`
}

func PartsCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPartRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.CreatePart(r.Context(), catalog.CreatePartInput{
			Name:       req.Name,
			Price:      req.Price,
			MaxPerRack: req.MaxPerRack,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, part)
	}
}

func PartsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts, err := svc.ListParts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, parts)
	}
}

func PartsGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "partID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		part, err := svc.GetPart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

type updatePartPriceRequest struct {
	Price decimal.Decimal `json:"price" validate:"required"`
}

func PartsUpdatePrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "partID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePartPriceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdatePartPrice(r.Context(), id, req.Price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		part, err := svc.GetPart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").
			WithDetails(map[string]any{"param": param, "value": raw})
	}
	return id, nil
}
