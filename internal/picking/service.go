package picking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

// Location is one rack a picker visits, with the quantity stored there.
type Location struct {
	Row      int `json:"row"`
	Column   int `json:"column"`
	Level    int `json:"level"`
	Quantity int `json:"quantity"`
}

// PlanItem is one part on the picking list with every rack holding it.
type PlanItem struct {
	PartID    uuid.UUID  `json:"part_id"`
	Name      string     `json:"name"`
	Required  int        `json:"required"`
	Locations []Location `json:"locations"`
}

// FulfillItem is one part quantity to withdraw from the warehouse.
type FulfillItem struct {
	PartID   uuid.UUID
	Quantity int
}

// Service plans and executes the physical withdrawal of reserved parts.
type Service interface {
	Plan(ctx context.Context, projectID uuid.UUID) ([]PlanItem, error)
	Fulfill(ctx context.Context, projectID uuid.UUID, items []FulfillItem) error
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

// NewService wires a picking service with the required dependencies.
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

// Plan produces the read-only picking list for a project: for each reserved
// part, every rack currently holding it, walked in row/column/level order.
func (s *service) Plan(ctx context.Context, projectID uuid.UUID) ([]PlanItem, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}

	reserved, err := s.resRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading reservations")
	}
	if len(reserved) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(reserved))
	for _, row := range reserved {
		ids = append(ids, row.PartID)
	}
	parts, err := s.partRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading parts")
	}
	names := make(map[uuid.UUID]string, len(parts))
	for _, part := range parts {
		names[part.ID] = part.Name
	}

	out := make([]PlanItem, 0, len(reserved))
	for _, row := range reserved {
		entries, err := s.stockRepo.EntriesForPart(ctx, row.PartID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading stock entries")
		}
		locations := make([]Location, 0, len(entries))
		for _, entry := range entries {
			if entry.Quantity <= 0 {
				continue
			}
			locations = append(locations, Location{
				Row:      entry.Row,
				Column:   entry.Column,
				Level:    entry.Level,
				Quantity: entry.Quantity,
			})
		}
		out = append(out, PlanItem{
			PartID:    row.PartID,
			Name:      names[row.PartID],
			Required:  row.Quantity,
			Locations: locations,
		})
	}
	return out, nil
}

// Fulfill withdraws the given quantities from the warehouse in one
// transaction. Racks are drained greedily in position order. If any part
// cannot be covered the whole withdrawal rolls back, leaving stock and
// reservations untouched. On success zeroed stock rows and the project's
// reservations are removed.
func (s *service) Fulfill(ctx context.Context, projectID uuid.UUID, items []FulfillItem) error {
	if len(items) == 0 {
		s.ops.IncFulfillment("rejected")
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			s.ops.IncFulfillment("rejected")
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"part_id": item.PartID, "quantity": item.Quantity})
		}
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		s.ops.IncFulfillment("rejected")
		return err
	}
	if project.Status != enums.ProjectStatusInProgress {
		s.ops.IncFulfillment("rejected")
		return pkgerrors.New(pkgerrors.CodePreconditionFailed, "project is not in progress").
			WithDetails(map[string]any{"project_id": projectID, "status": project.Status})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stockRepo := s.stockRepo.WithTx(tx)
		resRepo := s.resRepo.WithTx(tx)

		for _, item := range items {
			if err := withdraw(ctx, stockRepo, item); err != nil {
				return err
			}
		}
		if err := resRepo.DeleteByProject(ctx, projectID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "clearing reservations")
		}
		return nil
	})
	if err != nil {
		s.ops.IncFulfillment("failed")
		return err
	}

	s.ops.IncFulfillment("ok")
	s.notifier.Invalidate(ctx, cache.ViewStockStatus, cache.ViewShortages, cache.ViewProjects)
	return nil
}

// withdraw drains racks in position order until the requested quantity is
// covered, deleting rows that reach zero.
func withdraw(ctx context.Context, repo stock.Repository, item FulfillItem) error {
	entries, err := repo.EntriesForPart(ctx, item.PartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading stock entries")
	}

	remaining := item.Quantity
	for _, entry := range entries {
		if remaining == 0 {
			break
		}
		if entry.Quantity <= 0 {
			continue
		}
		take := entry.Quantity
		if take > remaining {
			take = remaining
		}
		left := entry.Quantity - take
		if left == 0 {
			if err := repo.DeleteEntry(ctx, entry.PartID, entry.RackID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting stock entry")
			}
		} else {
			if err := repo.SetQuantity(ctx, entry.PartID, entry.RackID, left); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating stock entry")
			}
		}
		remaining -= take
	}

	if remaining > 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to fulfill").
			WithDetails(map[string]any{"part_id": item.PartID, "outstanding": remaining})
	}
	return nil
}

func (s *service) loadProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found").
				WithDetails(map[string]any{"project_id": projectID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading project")
	}
	return project, nil
}
