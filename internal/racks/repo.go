package racks

import (
	"context"

	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/repo"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
)

// Repository exposes persistence operations for storage racks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rack *models.Rack) error
	FindByPosition(ctx context.Context, row, column, level int) (*models.Rack, error)
	List(ctx context.Context) ([]models.Rack, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a rack repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, rack *models.Rack) error {
	return r.DB(ctx).Create(rack).Error
}

func (r *repository) FindByPosition(ctx context.Context, row, column, level int) (*models.Rack, error) {
	var rack models.Rack
	err := r.DB(ctx).
		First(&rack, "row_num = ? AND col_num = ? AND level_num = ?", row, column, level).
		Error
	if err != nil {
		return nil, err
	}
	return &rack, nil
}

func (r *repository) List(ctx context.Context) ([]models.Rack, error) {
	var rows []models.Rack
	err := r.DB(ctx).
		Order("row_num ASC, col_num ASC, level_num ASC").
		Find(&rows).
		Error
	return rows, err
}
