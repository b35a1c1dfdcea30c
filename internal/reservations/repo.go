package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raktarhub/raktarhub-backend/internal/repo"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
)

// PartTotal aggregates reserved quantity per part.
type PartTotal struct {
	PartID   uuid.UUID `gorm:"column:part_id"`
	Quantity int       `gorm:"column:quantity"`
}

// Repository exposes persistence operations for project part reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertMany(ctx context.Context, rows []models.Reservation) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Reservation, error)
	SumByPart(ctx context.Context) ([]PartTotal, error)
	SumByPartForStatuses(ctx context.Context, statuses []enums.ProjectStatus) ([]PartTotal, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a reservation repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) UpsertMany(ctx context.Context, rows []models.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "part_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "reserved", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("project_id = ?", projectID).
		Order("part_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SumByPart(ctx context.Context) ([]PartTotal, error) {
	var rows []PartTotal
	err := r.DB(ctx).
		Model(&models.Reservation{}).
		Select("part_id, COALESCE(SUM(quantity), 0) AS quantity").
		Group("part_id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) SumByPartForStatuses(ctx context.Context, statuses []enums.ProjectStatus) ([]PartTotal, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	var rows []PartTotal
	err := r.DB(ctx).
		Model(&models.Reservation{}).
		Select("reservations.part_id, COALESCE(SUM(reservations.quantity), 0) AS quantity").
		Joins("JOIN projects ON projects.id = reservations.project_id").
		Where("projects.status IN ?", statuses).
		Group("reservations.part_id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.DB(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Reservation{}).Error
}
