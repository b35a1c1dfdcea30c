package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/repo"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
)

// Repository exposes persistence operations for installation projects and
// their status history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, statuses []enums.ProjectStatus) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ProjectStatus) (int64, error)
	AppendStatusLog(ctx context.Context, projectID uuid.UUID, status enums.ProjectStatus) error
	StatusLog(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusLog, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a project repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.DB(ctx).Create(project).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.DB(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, statuses []enums.ProjectStatus) ([]models.Project, error) {
	query := r.DB(ctx).Order("created_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.Project
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, project *models.Project) error {
	return r.DB(ctx).Save(project).Error
}

// UpdateStatusIf flips the status only when the row is still in the expected
// state, reporting how many rows matched. Concurrent movers lose the race and
// see zero.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ProjectStatus) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Project{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) AppendStatusLog(ctx context.Context, projectID uuid.UUID, status enums.ProjectStatus) error {
	entry := models.ProjectStatusLog{
		ID:        uuid.New(),
		ProjectID: projectID,
		Status:    status,
	}
	return r.DB(ctx).Create(&entry).Error
}

func (r *repository) StatusLog(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusLog, error) {
	var rows []models.ProjectStatusLog
	err := r.DB(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
