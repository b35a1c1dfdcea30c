package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the installation project lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Project, error)
	AssignParts(ctx context.Context, projectID uuid.UUID, items []AssignItem) (*models.Project, error)
	SetEstimate(ctx context.Context, projectID uuid.UUID, estimatedTime *int, workFee *decimal.Decimal) (*models.Project, error)
	StartFulfillment(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	Close(ctx context.Context, projectID uuid.UUID, outcome enums.ProjectStatus) (*models.Project, error)
	Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, statuses []enums.ProjectStatus) ([]models.Project, error)
	StatusLog(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusLog, error)
	AssignedParts(ctx context.Context, projectID uuid.UUID) ([]AssignedPart, error)
}

// CreateInput carries the fields for a new project.
type CreateInput struct {
	CustomerName string
	Location     string
	Description  string
}

// AssignItem is one part quantity requested for a project.
type AssignItem struct {
	PartID   uuid.UUID
	Quantity int
}

// AssignedPart is a project reservation enriched with the part's name and price.
type AssignedPart struct {
	PartID   uuid.UUID       `json:"part_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type service struct {
	repo     Repository
	resRepo  reservations.Repository
	partRepo catalog.Repository
	tx       txRunner
	notifier cache.Invalidator
	ops      *metrics.OperationMetrics
}

// NewService wires a project service with the required dependencies.
func NewService(
	repo Repository,
	resRepo reservations.Repository,
	partRepo catalog.Repository,
	tx txRunner,
	notifier cache.Invalidator,
	ops *metrics.OperationMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if resRepo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if partRepo == nil {
		return nil, fmt.Errorf("part repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	return &service{
		repo:     repo,
		resRepo:  resRepo,
		partRepo: partRepo,
		tx:       tx,
		notifier: notifier,
		ops:      ops,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	if input.CustomerName == "" || input.Location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and location are required")
	}

	project := &models.Project{
		ID:           uuid.New(),
		CustomerName: input.CustomerName,
		Location:     input.Location,
		Description:  input.Description,
		Status:       enums.ProjectStatusNew,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating project")
		}
		if err := repo.AppendStatusLog(ctx, project.ID, enums.ProjectStatusNew); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing status log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ops.IncTransition(enums.ProjectStatusNew.String())
	s.notifier.Invalidate(ctx, cache.ViewProjects)
	return project, nil
}

// AssignParts records the part quantities a project needs. Repeating a part
// replaces its quantity. The first assignment moves a fresh project from new
// to draft; later assignments leave the status alone.
func (s *service) AssignParts(ctx context.Context, projectID uuid.UUID, items []AssignItem) (*models.Project, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one part is required")
	}
	partIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"part_id": item.PartID, "quantity": item.Quantity})
		}
		partIDs = append(partIDs, item.PartID)
	}

	known, err := s.partRepo.FindByIDs(ctx, partIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading parts")
	}
	if len(known) != len(uniqueIDs(partIDs)) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more parts do not exist").
			WithDetails(map[string]any{"part_ids": partIDs})
	}

	project, err := s.loadProject(ctx, s.repo, projectID)
	if err != nil {
		return nil, err
	}
	switch project.Status {
	case enums.ProjectStatusNew, enums.ProjectStatusDraft, enums.ProjectStatusWait:
	default:
		return nil, pkgerrors.New(pkgerrors.CodePreconditionFailed, "parts can only be assigned before scheduling").
			WithDetails(map[string]any{"project_id": projectID, "status": project.Status})
	}

	rows := make([]models.Reservation, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.Reservation{
			ProjectID: projectID,
			PartID:    item.PartID,
			Quantity:  item.Quantity,
			Reserved:  true,
		})
	}

	moved := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		resRepo := s.resRepo.WithTx(tx)

		if err := resRepo.UpsertMany(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing reservations")
		}

		affected, err := repo.UpdateStatusIf(ctx, projectID, enums.ProjectStatusNew, enums.ProjectStatusDraft)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating project status")
		}
		if affected > 0 {
			moved = true
			if err := repo.AppendStatusLog(ctx, projectID, enums.ProjectStatusDraft); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing status log")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if moved {
		project.Status = enums.ProjectStatusDraft
		s.ops.IncTransition(enums.ProjectStatusDraft.String())
	}
	s.notifier.Invalidate(ctx, cache.ViewProjects, cache.ViewStockStatus, cache.ViewShortages)
	return project, nil
}

func (s *service) SetEstimate(ctx context.Context, projectID uuid.UUID, estimatedTime *int, workFee *decimal.Decimal) (*models.Project, error) {
	if estimatedTime == nil && workFee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated time or work fee is required")
	}
	if estimatedTime != nil && *estimatedTime <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated time must be positive").
			WithDetails(map[string]any{"estimated_time": *estimatedTime})
	}
	if workFee != nil && workFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work fee must not be negative").
			WithDetails(map[string]any{"work_fee": workFee.String()})
	}

	project, err := s.loadProject(ctx, s.repo, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodePreconditionFailed, "project is already closed").
			WithDetails(map[string]any{"project_id": projectID, "status": project.Status})
	}

	if estimatedTime != nil {
		project.EstimatedTime = estimatedTime
	}
	if workFee != nil {
		project.WorkFee = workFee
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating project")
	}

	s.notifier.Invalidate(ctx, cache.ViewProjects)
	return project, nil
}

// StartFulfillment moves a scheduled project into inprogress. The guarded
// update loses cleanly against concurrent movers: zero affected rows means the
// project either vanished or is not scheduled anymore.
func (s *service) StartFulfillment(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.UpdateStatusIf(ctx, projectID, enums.ProjectStatusScheduled, enums.ProjectStatusInProgress)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating project status")
		}
		if affected == 0 {
			current, err := s.loadProject(ctx, repo, projectID)
			if err != nil {
				return err
			}
			return pkgerrors.New(pkgerrors.CodePreconditionFailed, "project is not scheduled").
				WithDetails(map[string]any{"project_id": projectID, "status": current.Status})
		}
		if err := repo.AppendStatusLog(ctx, projectID, enums.ProjectStatusInProgress); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing status log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ops.IncTransition(enums.ProjectStatusInProgress.String())
	s.notifier.Invalidate(ctx, cache.ViewProjects)
	return s.Get(ctx, projectID)
}

// Close finishes an in-progress project as completed or failed.
func (s *service) Close(ctx context.Context, projectID uuid.UUID, outcome enums.ProjectStatus) (*models.Project, error) {
	if outcome != enums.ProjectStatusCompleted && outcome != enums.ProjectStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be completed or failed").
			WithDetails(map[string]any{"outcome": outcome})
	}

	project, err := s.loadProject(ctx, s.repo, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.CanTransitionTo(outcome) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "project cannot be closed from its current state").
			WithDetails(map[string]any{"project_id": projectID, "from": project.Status, "to": outcome})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.UpdateStatusIf(ctx, projectID, enums.ProjectStatusInProgress, outcome)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating project status")
		}
		if affected == 0 {
			current, err := s.loadProject(ctx, repo, projectID)
			if err != nil {
				return err
			}
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "project cannot be closed from its current state").
				WithDetails(map[string]any{"project_id": projectID, "from": current.Status, "to": outcome})
		}
		if err := repo.AppendStatusLog(ctx, projectID, outcome); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing status log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	project.Status = outcome
	s.ops.IncTransition(outcome.String())
	s.notifier.Invalidate(ctx, cache.ViewProjects)
	return project, nil
}

func (s *service) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return s.loadProject(ctx, s.repo, projectID)
}

func (s *service) List(ctx context.Context, statuses []enums.ProjectStatus) ([]models.Project, error) {
	rows, err := s.repo.List(ctx, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing projects")
	}
	return rows, nil
}

func (s *service) StatusLog(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusLog, error) {
	if _, err := s.loadProject(ctx, s.repo, projectID); err != nil {
		return nil, err
	}
	rows, err := s.repo.StatusLog(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading status log")
	}
	return rows, nil
}

func (s *service) AssignedParts(ctx context.Context, projectID uuid.UUID) ([]AssignedPart, error) {
	if _, err := s.loadProject(ctx, s.repo, projectID); err != nil {
		return nil, err
	}
	rows, err := s.resRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading reservations")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PartID)
	}
	parts, err := s.partRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading parts")
	}
	byID := make(map[uuid.UUID]models.Part, len(parts))
	for _, part := range parts {
		byID[part.ID] = part
	}

	out := make([]AssignedPart, 0, len(rows))
	for _, row := range rows {
		part := byID[row.PartID]
		out = append(out, AssignedPart{
			PartID:   row.PartID,
			Name:     part.Name,
			Price:    part.Price,
			Quantity: row.Quantity,
		})
	}
	return out, nil
}

func (s *service) loadProject(ctx context.Context, repo Repository, projectID uuid.UUID) (*models.Project, error) {
	project, err := repo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found").
				WithDetails(map[string]any{"project_id": projectID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading project")
	}
	return project, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
