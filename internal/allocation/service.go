package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	"github.com/raktarhub/raktarhub-backend/pkg/enums"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// activeStatuses is the pool of projects whose reservations count against
// availability: parts promised to them are already spoken for.
var activeStatuses = []enums.ProjectStatus{
	enums.ProjectStatusScheduled,
	enums.ProjectStatusInProgress,
}

// Shortfall names a part the warehouse cannot currently promise.
type Shortfall struct {
	PartID    uuid.UUID `json:"part_id"`
	Name      string    `json:"name"`
	Required  int       `json:"required"`
	Available int       `json:"available"`
	Missing   int       `json:"missing"`
}

// Result is the outcome of one allocation evaluation.
type Result struct {
	ProjectID     uuid.UUID           `json:"project_id"`
	Status        enums.ProjectStatus `json:"status"`
	Feasible      bool                `json:"feasible"`
	Missing       []Shortfall         `json:"missing,omitempty"`
	ComponentCost *decimal.Decimal    `json:"component_cost,omitempty"`
	TotalCost     *decimal.Decimal    `json:"total_cost,omitempty"`
}

// Service decides whether a project's assigned parts can be promised.
type Service interface {
	Evaluate(ctx context.Context, projectID uuid.UUID) (*Result, error)
}

type service struct {
	projRepo  projects.Repository
	resRepo   reservations.Repository
	stockRepo stock.Repository
	partRepo  catalog.Repository
	tx        txRunner
	notifier  cache.Invalidator
	ops       *metrics.OperationMetrics
}

// NewService wires an allocation service with the required dependencies.
func NewService(
	projRepo projects.Repository,
	resRepo reservations.Repository,
	stockRepo stock.Repository,
	partRepo catalog.Repository,
	tx txRunner,
	notifier cache.Invalidator,
	ops *metrics.OperationMetrics,
) (Service, error) {
	if projRepo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if resRepo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("stock repository required")
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
		projRepo:  projRepo,
		resRepo:   resRepo,
		stockRepo: stockRepo,
		partRepo:  partRepo,
		tx:        tx,
		notifier:  notifier,
		ops:       ops,
	}, nil
}

// Evaluate checks every reservation of the project against stock that is not
// already promised to scheduled or in-progress projects. A shortfall parks the
// project in wait; full coverage prices the job and schedules it. Stock itself
// is never touched here, so a later fulfillment can still fail if the
// warehouse moved on in the meantime.
func (s *service) Evaluate(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	project, err := s.projRepo.FindByID(ctx, projectID)
	if err != nil {
		s.ops.IncEvaluation("error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found").
				WithDetails(map[string]any{"project_id": projectID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading project")
	}

	if project.Status != enums.ProjectStatusDraft && project.Status != enums.ProjectStatusWait {
		s.ops.IncEvaluation("rejected")
		return nil, pkgerrors.New(pkgerrors.CodePreconditionFailed, "project must be draft or waiting to be evaluated").
			WithDetails(map[string]any{"project_id": projectID, "status": project.Status})
	}
	if project.WorkFee == nil {
		s.ops.IncEvaluation("rejected")
		return nil, pkgerrors.New(pkgerrors.CodePreconditionMissing, "work fee is not set").
			WithDetails(map[string]any{"project_id": projectID})
	}

	reserved, err := s.resRepo.ListByProject(ctx, projectID)
	if err != nil {
		s.ops.IncEvaluation("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading reservations")
	}
	if len(reserved) == 0 {
		s.ops.IncEvaluation("rejected")
		return nil, pkgerrors.New(pkgerrors.CodePreconditionMissing, "no parts assigned").
			WithDetails(map[string]any{"project_id": projectID})
	}

	parts, err := s.loadParts(ctx, reserved)
	if err != nil {
		s.ops.IncEvaluation("error")
		return nil, err
	}

	missing, err := s.findShortfalls(ctx, reserved, parts)
	if err != nil {
		s.ops.IncEvaluation("error")
		return nil, err
	}

	if len(missing) > 0 {
		if err := s.transition(ctx, project, enums.ProjectStatusWait); err != nil {
			s.ops.IncEvaluation("error")
			return nil, err
		}
		s.ops.IncEvaluation("wait")
		s.notifier.Invalidate(ctx, cache.ViewProjects, cache.ViewShortages)
		return &Result{
			ProjectID: projectID,
			Status:    enums.ProjectStatusWait,
			Feasible:  false,
			Missing:   missing,
		}, nil
	}

	componentCost := decimal.Zero
	for _, row := range reserved {
		part := parts[row.PartID]
		componentCost = componentCost.Add(part.Price.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}
	totalCost := componentCost.Add(*project.WorkFee)

	if err := s.transition(ctx, project, enums.ProjectStatusScheduled); err != nil {
		s.ops.IncEvaluation("error")
		return nil, err
	}
	s.ops.IncEvaluation("scheduled")
	s.notifier.Invalidate(ctx, cache.ViewProjects, cache.ViewStockStatus, cache.ViewShortages)
	return &Result{
		ProjectID:     projectID,
		Status:        enums.ProjectStatusScheduled,
		Feasible:      true,
		ComponentCost: &componentCost,
		TotalCost:     &totalCost,
	}, nil
}

func (s *service) loadParts(ctx context.Context, reserved []models.Reservation) (map[uuid.UUID]models.Part, error) {
	ids := make([]uuid.UUID, 0, len(reserved))
	for _, row := range reserved {
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
	return byID, nil
}

func (s *service) findShortfalls(ctx context.Context, reserved []models.Reservation, parts map[uuid.UUID]models.Part) ([]Shortfall, error) {
	stockTotals, err := s.stockRepo.SumByPart(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "summing stock")
	}
	activeTotals, err := s.resRepo.SumByPartForStatuses(ctx, activeStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "summing active reservations")
	}

	onHand := make(map[uuid.UUID]int, len(stockTotals))
	for _, row := range stockTotals {
		onHand[row.PartID] = row.Quantity
	}
	active := make(map[uuid.UUID]int, len(activeTotals))
	for _, row := range activeTotals {
		active[row.PartID] = row.Quantity
	}

	var missing []Shortfall
	for _, row := range reserved {
		available := onHand[row.PartID] - active[row.PartID]
		if available < 0 {
			available = 0
		}
		if row.Quantity > available {
			missing = append(missing, Shortfall{
				PartID:    row.PartID,
				Name:      parts[row.PartID].Name,
				Required:  row.Quantity,
				Available: available,
				Missing:   row.Quantity - available,
			})
		}
	}
	return missing, nil
}

// transition moves the project to target with its log entry in one
// transaction. Arriving in wait a second time is a no-op without a duplicate
// log row; scheduling is always logged.
func (s *service) transition(ctx context.Context, project *models.Project, target enums.ProjectStatus) error {
	if project.Status == target {
		return nil
	}
	from := project.Status
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.projRepo.WithTx(tx)

		affected, err := repo.UpdateStatusIf(ctx, project.ID, from, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating project status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodePreconditionFailed, "project changed state during evaluation").
				WithDetails(map[string]any{"project_id": project.ID, "expected": from})
		}
		if err := repo.AppendStatusLog(ctx, project.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing status log")
		}
		return nil
	})
	if err != nil {
		return err
	}
	project.Status = target
	s.ops.IncTransition(target.String())
	return nil
}
