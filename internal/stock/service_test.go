package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
)

func TestReceiveRespectsPartRackLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "bracket", 10)
	rack := seedRack(t, db, 1, 1, 1)

	entry, err := svc.Receive(ctx, ReceiveInput{PartID: part.ID, Row: 1, Column: 1, Level: 1, Quantity: 6})
	if err != nil {
		t.Fatalf("first receive: %v", err)
	}
	if entry.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", entry.Quantity)
	}

	_, err = svc.Receive(ctx, ReceiveInput{PartID: part.ID, Row: 1, Column: 1, Level: 1, Quantity: 5})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCapacityExceeded {
		t.Fatalf("expected capacity error, got %v", err)
	}

	var stored models.StockEntry
	if err := db.First(&stored, "part_id = ? AND rack_id = ?", part.ID, rack.ID).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if stored.Quantity != 6 {
		t.Fatalf("rejected receive must not change stock, got %d", stored.Quantity)
	}
}

func TestReceiveAccumulatesIntoExistingEntry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "hinge", 100)
	seedRack(t, db, 2, 3, 1)

	for _, qty := range []int{10, 15} {
		if _, err := svc.Receive(ctx, ReceiveInput{PartID: part.ID, Row: 2, Column: 3, Level: 1, Quantity: qty}); err != nil {
			t.Fatalf("receive %d: %v", qty, err)
		}
	}

	var entries []models.StockEntry
	if err := db.Where("part_id = ?", part.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Quantity != 25 {
		t.Fatalf("expected one entry with 25, got %+v", entries)
	}
}

func TestReceiveUnknownRackPosition(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	part := seedPart(t, db, "panel", 10)

	_, err := svc.Receive(context.Background(), ReceiveInput{PartID: part.ID, Row: 9, Column: 9, Level: 9, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatusAndShortages(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	partA := seedPart(t, db, "cable", 100)
	partB := seedPart(t, db, "switch", 100)
	seedRack(t, db, 1, 1, 1)

	if _, err := svc.Receive(ctx, ReceiveInput{PartID: partA.ID, Row: 1, Column: 1, Level: 1, Quantity: 8}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	projectID := uuid.New()
	for _, res := range []models.Reservation{
		{ProjectID: projectID, PartID: partA.ID, Quantity: 3, Reserved: true},
		{ProjectID: projectID, PartID: partB.ID, Quantity: 4, Reserved: true},
	} {
		if err := db.Create(&res).Error; err != nil {
			t.Fatalf("seed reservation: %v", err)
		}
	}

	status, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	byName := make(map[string]PartStatus, len(status))
	for _, row := range status {
		byName[row.Name] = row
	}
	if got := byName["cable"]; got.TotalStock != 8 || got.Reserved != 3 || got.Available != 5 {
		t.Fatalf("unexpected cable status: %+v", got)
	}
	if got := byName["switch"]; got.TotalStock != 0 || got.Reserved != 4 || got.Available != 0 {
		t.Fatalf("unexpected switch status: %+v", got)
	}

	shortages, err := svc.Shortages(ctx)
	if err != nil {
		t.Fatalf("shortages: %v", err)
	}
	if len(shortages) != 1 || shortages[0].Name != "switch" || shortages[0].Missing != 4 {
		t.Fatalf("unexpected shortages: %+v", shortages)
	}
}

type gormTx struct{ db *gorm.DB }

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(db),
		racks.NewRepository(db),
		catalog.NewRepository(db),
		reservations.NewRepository(db),
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
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Part{}, &models.Rack{}, &models.StockEntry{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPart(t *testing.T, db *gorm.DB, name string, maxPerRack int) *models.Part {
	t.Helper()
	part := models.Part{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(10), MaxPerRack: maxPerRack}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("seed part: %v", err)
	}
	return &part
}

func seedRack(t *testing.T, db *gorm.DB, row, column, level int) *models.Rack {
	t.Helper()
	rack := models.Rack{ID: uuid.New(), Row: row, Column: column, Level: level, Capacity: 100}
	if err := db.Create(&rack).Error; err != nil {
		t.Fatalf("seed rack: %v", err)
	}
	return &rack
}
