package picking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestFulfillDrainsRacksInPositionOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "bracket")
	rackNear := seedRack(t, db, 1, 1, 1)
	rackFar := seedRack(t, db, 2, 1, 1)
	seedStock(t, db, part.ID, rackNear.ID, 3)
	seedStock(t, db, part.ID, rackFar.ID, 4)

	project := seedProject(t, db, enums.ProjectStatusInProgress)
	seedReservation(t, db, project.ID, part.ID, 5)

	err := svc.Fulfill(ctx, project.ID, []FulfillItem{{PartID: part.ID, Quantity: 5}})
	require.NoError(t, err)

	// The near rack is emptied and its row removed, the far rack keeps the rest.
	var nearEntry models.StockEntry
	err = db.First(&nearEntry, "part_id = ? AND rack_id = ?", part.ID, rackNear.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var farEntry models.StockEntry
	require.NoError(t, db.First(&farEntry, "part_id = ? AND rack_id = ?", part.ID, rackFar.ID).Error)
	assert.Equal(t, 2, farEntry.Quantity)

	var remaining []models.Reservation
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&remaining).Error)
	assert.Empty(t, remaining)
}

func TestFulfillRollsBackCompletely(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	covered := seedPart(t, db, "hinge")
	scarce := seedPart(t, db, "panel")
	rack := seedRack(t, db, 1, 1, 1)
	seedStock(t, db, covered.ID, rack.ID, 10)
	seedStock(t, db, scarce.ID, rack.ID, 1)

	project := seedProject(t, db, enums.ProjectStatusInProgress)
	seedReservation(t, db, project.ID, covered.ID, 4)
	seedReservation(t, db, project.ID, scarce.ID, 3)

	err := svc.Fulfill(ctx, project.ID, []FulfillItem{
		{PartID: covered.ID, Quantity: 4},
		{PartID: scarce.ID, Quantity: 3},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, scarce.ID, details["part_id"])
	assert.Equal(t, 2, details["outstanding"])

	// Nothing moved: the covered part's withdrawal rolled back too.
	var entry models.StockEntry
	require.NoError(t, db.First(&entry, "part_id = ? AND rack_id = ?", covered.ID, rack.ID).Error)
	assert.Equal(t, 10, entry.Quantity)

	var remaining []models.Reservation
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&remaining).Error)
	assert.Len(t, remaining, 2)
}

func TestFulfillRequiresInProgressProject(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "cable")
	project := seedProject(t, db, enums.ProjectStatusScheduled)

	err := svc.Fulfill(ctx, project.ID, []FulfillItem{{PartID: part.ID, Quantity: 1}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePreconditionFailed, typed.Code())
}

func TestPlanListsLocationsInPositionOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	part := seedPart(t, db, "switch")
	rackB := seedRack(t, db, 3, 1, 1)
	rackA := seedRack(t, db, 1, 2, 1)
	seedStock(t, db, part.ID, rackB.ID, 2)
	seedStock(t, db, part.ID, rackA.ID, 5)

	project := seedProject(t, db, enums.ProjectStatusScheduled)
	seedReservation(t, db, project.ID, part.ID, 6)

	plan, err := svc.Plan(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	item := plan[0]
	assert.Equal(t, 6, item.Required)
	require.Len(t, item.Locations, 2)
	assert.Equal(t, Location{Row: 1, Column: 2, Level: 1, Quantity: 5}, item.Locations[0])
	assert.Equal(t, Location{Row: 3, Column: 1, Level: 1, Quantity: 2}, item.Locations[1])
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
	require.NoError(t, err)
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:picking_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.Part{},
		&models.Rack{},
		&models.StockEntry{},
		&models.Reservation{},
		&models.Project{},
		&models.ProjectStatusLog{},
	)
	require.NoError(t, err)
	return db
}

func seedPart(t *testing.T, db *gorm.DB, name string) *models.Part {
	t.Helper()
	part := models.Part{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(10), MaxPerRack: 1000}
	require.NoError(t, db.Create(&part).Error)
	return &part
}

func seedRack(t *testing.T, db *gorm.DB, row, column, level int) *models.Rack {
	t.Helper()
	rack := models.Rack{ID: uuid.New(), Row: row, Column: column, Level: level, Capacity: 1000}
	require.NoError(t, db.Create(&rack).Error)
	return &rack
}

func seedStock(t *testing.T, db *gorm.DB, partID, rackID uuid.UUID, quantity int) {
	t.Helper()
	entry := models.StockEntry{PartID: partID, RackID: rackID, Quantity: quantity}
	require.NoError(t, db.Create(&entry).Error)
}

func seedProject(t *testing.T, db *gorm.DB, status enums.ProjectStatus) *models.Project {
	t.Helper()
	project := models.Project{
		ID:           uuid.New(),
		CustomerName: "Teszt Kft.",
		Location:     "Budapest",
		Status:       status,
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func seedReservation(t *testing.T, db *gorm.DB, projectID, partID uuid.UUID, quantity int) {
	t.Helper()
	res := models.Reservation{ProjectID: projectID, PartID: partID, Quantity: quantity, Reserved: true}
	require.NoError(t, db.Create(&res).Error)
}
