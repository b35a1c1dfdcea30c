package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/repo"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
)

// Repository exposes persistence operations for the part catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, part *models.Part) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Part, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Part, error)
	List(ctx context.Context) ([]models.Part, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, part *models.Part) error {
	return r.DB(ctx).Create(part).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	var part models.Part
	if err := r.DB(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Part, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Part
	err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context) ([]models.Part, error) {
	var rows []models.Part
	err := r.DB(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Part{}).
		Where("id = ?", id).
		Update("price", price)
	return res.RowsAffected, res.Error
}
