package allocation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
)

func TestEvaluateSchedulesWhenStockCovers(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "bracket", decimal.NewFromInt(25))
	seedStock(t, db, part.ID, 10)
	fee := decimal.NewFromInt(100)
	project := seedProject(t, db, enums.ProjectStatusDraft, &fee)
	seedReservation(t, db, project.ID, part.ID, 4)

	result, err := svc.Evaluate(ctx, project.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Feasible || result.Status != enums.ProjectStatusScheduled {
		t.Fatalf("expected scheduled, got %+v", result)
	}
	if result.ComponentCost == nil || !result.ComponentCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected component cost 100, got %+v", result.ComponentCost)
	}
	if result.TotalCost == nil || !result.TotalCost.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total cost 200, got %+v", result.TotalCost)
	}

	var logs []models.ProjectStatusLog
	if err := db.Where("project_id = ?", project.ID).Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != enums.ProjectStatusScheduled {
		t.Fatalf("expected single scheduled log, got %+v", logs)
	}
}

func TestEvaluateWaitsWhenActivePoolClaimsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "hinge", decimal.NewFromInt(5))
	seedStock(t, db, part.ID, 10)

	// A scheduled competitor already holds most of the stock.
	competitor := seedProject(t, db, enums.ProjectStatusScheduled, nil)
	seedReservation(t, db, competitor.ID, part.ID, 8)

	fee := decimal.NewFromInt(50)
	project := seedProject(t, db, enums.ProjectStatusDraft, &fee)
	seedReservation(t, db, project.ID, part.ID, 4)

	result, err := svc.Evaluate(ctx, project.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Feasible || result.Status != enums.ProjectStatusWait {
		t.Fatalf("expected wait, got %+v", result)
	}
	if len(result.Missing) != 1 {
		t.Fatalf("expected one shortfall, got %+v", result.Missing)
	}
	short := result.Missing[0]
	if short.Required != 4 || short.Available != 2 || short.Missing != 2 {
		t.Fatalf("unexpected shortfall: %+v", short)
	}

	// Re-evaluating an unchanged wait project must not duplicate the log.
	if _, err := svc.Evaluate(ctx, project.ID); err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	var logs []models.ProjectStatusLog
	if err := db.Where("project_id = ? AND status = ?", project.ID, enums.ProjectStatusWait).Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected single wait log, got %d", len(logs))
	}
}

func TestEvaluateWaitProjectCanBeScheduledLater(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "cable", decimal.NewFromInt(2))
	fee := decimal.NewFromInt(10)
	project := seedProject(t, db, enums.ProjectStatusWait, &fee)
	seedReservation(t, db, project.ID, part.ID, 3)

	seedStock(t, db, part.ID, 3)

	result, err := svc.Evaluate(ctx, project.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Feasible || result.Status != enums.ProjectStatusScheduled {
		t.Fatalf("expected scheduled, got %+v", result)
	}
}

func TestEvaluatePreconditions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "panel", decimal.NewFromInt(9))

	// Work fee missing.
	noFee := seedProject(t, db, enums.ProjectStatusDraft, nil)
	seedReservation(t, db, noFee.ID, part.ID, 1)
	_, err := svc.Evaluate(ctx, noFee.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePreconditionMissing {
		t.Fatalf("expected precondition missing for fee, got %v", err)
	}

	// No parts assigned.
	fee := decimal.NewFromInt(10)
	empty := seedProject(t, db, enums.ProjectStatusDraft, &fee)
	_, err = svc.Evaluate(ctx, empty.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePreconditionMissing {
		t.Fatalf("expected precondition missing for parts, got %v", err)
	}

	// Wrong lifecycle state.
	running := seedProject(t, db, enums.ProjectStatusInProgress, &fee)
	seedReservation(t, db, running.ID, part.ID, 1)
	_, err = svc.Evaluate(ctx, running.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePreconditionFailed {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

type gormTx struct{ db *gorm.DB }

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		projects.NewRepository(db),
		reservations.NewRepository(db),
		stock.NewRepository(db),
		catalog.NewRepository(db),
		gormTx{db: db},
		cache.NewNopInvalidator(),
		nil,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:allocation_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Part{},
		&models.Rack{},
		&models.StockEntry{},
		&models.Reservation{},
		&models.Project{},
		&models.ProjectStatusLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPart(t *testing.T, db *gorm.DB, name string, price decimal.Decimal) *models.Part {
	t.Helper()
	part := models.Part{ID: uuid.New(), Name: name, Price: price, MaxPerRack: 1000}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	return &part
}

func seedStock(t *testing.T, db *gorm.DB, partID uuid.UUID, quantity int) {
	t.Helper()
	rack := models.Rack{ID: uuid.New(), Row: 1, Column: 1, Level: 1, Capacity: 1000}
	if err := db.Create(&rack).Error; err != nil {
		t.Fatalf("seed rack: %v", err)
	}
	entry := models.StockEntry{PartID: partID, RackID: rack.ID, Quantity: quantity}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func seedProject(t *testing.T, db *gorm.DB, status enums.ProjectStatus, fee *decimal.Decimal) *models.Project {
	t.Helper()
	project := models.Project{
		ID:           uuid.New(),
		CustomerName: "Teszt Kft.",
		Location:     "Budapest",
		Status:       status,
		WorkFee:      fee,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return &project
}

func seedReservation(t *testing.T, db *gorm.DB, projectID, partID uuid.UUID, quantity int) {
	t.Helper()
	res := models.Reservation{ProjectID: projectID, PartID: partID, Quantity: quantity, Reserved: true}
	if err := db.Create(&res).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
}
