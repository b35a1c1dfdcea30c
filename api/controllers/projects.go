package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raktarhub/raktarhub-backend/api/responses"
	"github.com/raktarhub/raktarhub-backend/api/validators"
	"github.com/raktarhub/raktarhub-backend/internal/allocation"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

type createProjectRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=1"`
	Location     string `json:"location" validate:"required,min=1"`
	Description  string `json:"description"`
}

func ProjectsCreate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), projects.CreateInput{
			CustomerName: req.CustomerName,
			Location:     req.Location,
			Description:  req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

func ProjectsList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := parseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ProjectsGet(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

type assignPartsRequest struct {
	Items []assignPartItem `json:"items" validate:"required,min=1,dive"`
}

type assignPartItem struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

func ProjectsAssignParts(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignPartsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]projects.AssignItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, projects.AssignItem{PartID: item.PartID, Quantity: item.Quantity})
		}

		project, err := svc.AssignParts(r.Context(), id, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

type setEstimateRequest struct {
	EstimatedTime *int             `json:"estimated_time,omitempty" validate:"omitempty,gt=0"`
	WorkFee       *decimal.Decimal `json:"work_fee,omitempty"`
}

func ProjectsSetEstimate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setEstimateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.SetEstimate(r.Context(), id, req.EstimatedTime, req.WorkFee)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func ProjectsEvaluate(svc allocation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Evaluate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProjectsStartFulfillment(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.StartFulfillment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

type closeProjectRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=completed failed"`
}

func ProjectsClose(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req closeProjectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := enums.ParseProjectStatus(req.Outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid outcome"))
			return
		}

		project, err := svc.Close(r.Context(), id, outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

func ProjectsStatusLog(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.StatusLog(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, log)
	}
}

func ProjectsAssignedParts(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "projectID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		parts, err := svc.AssignedParts(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, parts)
	}
}

func parseStatusFilter(raw string) ([]enums.ProjectStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []enums.ProjectStatus
	for _, token := range strings.Split(raw, ",") {
		status, err := enums.ParseProjectStatus(strings.TrimSpace(token))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"status": token})
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
