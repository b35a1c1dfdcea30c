package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raktarhub/raktarhub-backend/internal/repo"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
)

// PartTotal aggregates on-hand quantity per part across all racks.
type PartTotal struct {
	PartID   uuid.UUID `gorm:"column:part_id"`
	Quantity int       `gorm:"column:quantity"`
}

// RackEntry is a stock entry joined with the physical position of its rack.
type RackEntry struct {
	PartID   uuid.UUID `gorm:"column:part_id"`
	RackID   uuid.UUID `gorm:"column:rack_id"`
	Quantity int       `gorm:"column:quantity"`
	Row      int       `gorm:"column:row_num"`
	Column   int       `gorm:"column:col_num"`
	Level    int       `gorm:"column:level_num"`
}

// Repository exposes persistence operations for physical stock entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetEntry(ctx context.Context, partID, rackID uuid.UUID) (*models.StockEntry, error)
	SetQuantity(ctx context.Context, partID, rackID uuid.UUID, quantity int) error
	DeleteEntry(ctx context.Context, partID, rackID uuid.UUID) error
	SumByPart(ctx context.Context) ([]PartTotal, error)
	EntriesForPart(ctx context.Context, partID uuid.UUID) ([]RackEntry, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a stock repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) GetEntry(ctx context.Context, partID, rackID uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := r.DB(ctx).
		First(&entry, "part_id = ? AND rack_id = ?", partID, rackID).
		Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) SetQuantity(ctx context.Context, partID, rackID uuid.UUID, quantity int) error {
	entry := models.StockEntry{PartID: partID, RackID: rackID, Quantity: quantity}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "part_id"}, {Name: "rack_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *repository) DeleteEntry(ctx context.Context, partID, rackID uuid.UUID) error {
	return r.DB(ctx).
		Where("part_id = ? AND rack_id = ?", partID, rackID).
		Delete(&models.StockEntry{}).Error
}

func (r *repository) SumByPart(ctx context.Context) ([]PartTotal, error) {
	var rows []PartTotal
	err := r.DB(ctx).
		Model(&models.StockEntry{}).
		Select("part_id, COALESCE(SUM(quantity), 0) AS quantity").
		Group("part_id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) EntriesForPart(ctx context.Context, partID uuid.UUID) ([]RackEntry, error) {
	var rows []RackEntry
	err := r.DB(ctx).
		Model(&models.StockEntry{}).
		Select("stock_entries.part_id, stock_entries.rack_id, stock_entries.quantity, racks.row_num, racks.col_num, racks.level_num").
		Joins("JOIN racks ON racks.id = stock_entries.rack_id").
		Where("stock_entries.part_id = ?", partID).
		Order("racks.row_num ASC, racks.col_num ASC, racks.level_num ASC").
		Scan(&rows).Error
	return rows, err
}
