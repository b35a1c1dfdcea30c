package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/raktarhub/raktarhub-backend/internal/allocation"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/picking"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/config"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCatalog struct{}

func (stubCatalog) CreatePart(context.Context, catalog.CreatePartInput) (*models.Part, error) {
	return &models.Part{ID: uuid.New()}, nil
}
func (stubCatalog) UpdatePartPrice(context.Context, uuid.UUID, decimal.Decimal) error { return nil }
func (stubCatalog) GetPart(context.Context, uuid.UUID) (*models.Part, error) {
	return &models.Part{}, nil
}
func (stubCatalog) ListParts(context.Context) ([]models.Part, error) { return nil, nil }

type stubRacks struct{}

func (stubRacks) CreateRack(context.Context, racks.CreateRackInput) (*models.Rack, error) {
	return &models.Rack{}, nil
}
func (stubRacks) ListRacks(context.Context) ([]models.Rack, error) { return nil, nil }

type stubStock struct{}

func (stubStock) Receive(context.Context, stock.ReceiveInput) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}
func (stubStock) Status(context.Context) ([]stock.PartStatus, error) { return nil, nil }
func (stubStock) Shortages(context.Context) ([]stock.Shortage, error) {
	return nil, nil
}

type stubProjects struct{}

func (stubProjects) Create(context.Context, projects.CreateInput) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) AssignParts(context.Context, uuid.UUID, []projects.AssignItem) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) SetEstimate(context.Context, uuid.UUID, *int, *decimal.Decimal) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) StartFulfillment(context.Context, uuid.UUID) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) Close(context.Context, uuid.UUID, enums.ProjectStatus) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) Get(context.Context, uuid.UUID) (*models.Project, error) {
	return &models.Project{}, nil
}
func (stubProjects) List(context.Context, []enums.ProjectStatus) ([]models.Project, error) {
	return []models.Project{}, nil
}
func (stubProjects) StatusLog(context.Context, uuid.UUID) ([]models.ProjectStatusLog, error) {
	return nil, nil
}
func (stubProjects) AssignedParts(context.Context, uuid.UUID) ([]projects.AssignedPart, error) {
	return nil, nil
}

type stubAllocation struct{}

func (stubAllocation) Evaluate(context.Context, uuid.UUID) (*allocation.Result, error) {
	return &allocation.Result{}, nil
}

type stubPicking struct{}

func (stubPicking) Plan(context.Context, uuid.UUID) ([]picking.PlanItem, error) { return nil, nil }
func (stubPicking) Fulfill(context.Context, uuid.UUID, []picking.FulfillItem) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		prometheus.NewRegistry(),
		stubCatalog{},
		stubRacks{},
		stubStock{},
		stubProjects{},
		stubAllocation{},
		stubPicking{},
	)
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env := rec.Header().Get("X-RaktarHub-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestInvalidProjectIDRejected(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
		t.Fatalf("expected validation error body, got %s", rec.Body.String())
	}
}

func TestStatusFilterRejected(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects?status=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
