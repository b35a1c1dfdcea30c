package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines warehouse stock operations.
type Service interface {
	Receive(ctx context.Context, input ReceiveInput) (*models.StockEntry, error)
	Status(ctx context.Context) ([]PartStatus, error)
	Shortages(ctx context.Context) ([]Shortage, error)
}

// ReceiveInput places a delivered quantity of one part into a rack identified
// by its physical position.
type ReceiveInput struct {
	PartID   uuid.UUID
	Row      int
	Column   int
	Level    int
	Quantity int
}

// PartStatus is the per-part stock overview: everything on hand, everything
// reserved by any project, and what that leaves available.
type PartStatus struct {
	PartID     uuid.UUID `json:"part_id"`
	Name       string    `json:"name"`
	TotalStock int       `json:"total_stock"`
	Reserved   int       `json:"reserved"`
	Available  int       `json:"available"`
}

// Shortage names a part whose reservations exceed the stock on hand.
type Shortage struct {
	PartID  uuid.UUID `json:"part_id"`
	Name    string    `json:"name"`
	Missing int       `json:"missing"`
}

type service struct {
	repo     Repository
	rackRepo racks.Repository
	partRepo catalog.Repository
	resRepo  reservations.Repository
	tx       txRunner
	notifier cache.Invalidator
	ops      *metrics.OperationMetrics
}

// NewService wires a stock service with the required dependencies.
func NewService(
	repo Repository,
	rackRepo racks.Repository,
	partRepo catalog.Repository,
	resRepo reservations.Repository,
	tx txRunner,
	notifier cache.Invalidator,
	ops *metrics.OperationMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if rackRepo == nil {
		return nil, fmt.Errorf("rack repository required")
	}
	if partRepo == nil {
		return nil, fmt.Errorf("part repository required")
	}
	if resRepo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	return &service{
		repo:     repo,
		rackRepo: rackRepo,
		partRepo: partRepo,
		resRepo:  resRepo,
		tx:       tx,
		notifier: notifier,
		ops:      ops,
	}, nil
}

func (s *service) Receive(ctx context.Context, input ReceiveInput) (*models.StockEntry, error) {
	if input.Quantity <= 0 {
		s.ops.IncReceive("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": input.Quantity})
	}

	rack, err := racks.FindByPosition(ctx, s.rackRepo, input.Row, input.Column, input.Level)
	if err != nil {
		s.ops.IncReceive("rejected")
		return nil, err
	}

	part, err := s.partRepo.FindByID(ctx, input.PartID)
	if err != nil {
		s.ops.IncReceive("rejected")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found").
				WithDetails(map[string]any{"part_id": input.PartID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading part")
	}

	var updated models.StockEntry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current := 0
		entry, err := repo.GetEntry(ctx, part.ID, rack.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reading stock entry")
		}
		if entry != nil {
			current = entry.Quantity
		}

		if current+input.Quantity > part.MaxPerRack {
			return pkgerrors.New(pkgerrors.CodeCapacityExceeded,
				"receiving would exceed the per-rack limit for this part").
				WithDetails(map[string]any{
					"current":   current,
					"requested": input.Quantity,
					"limit":     part.MaxPerRack,
				})
		}

		if err := repo.SetQuantity(ctx, part.ID, rack.ID, current+input.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing stock entry")
		}
		updated = models.StockEntry{PartID: part.ID, RackID: rack.ID, Quantity: current + input.Quantity}
		return nil
	})
	if err != nil {
		s.ops.IncReceive("rejected")
		return nil, err
	}

	s.ops.IncReceive("ok")
	s.notifier.Invalidate(ctx, cache.ViewStockStatus, cache.ViewShortages)
	return &updated, nil
}

func (s *service) Status(ctx context.Context) ([]PartStatus, error) {
	parts, err := s.partRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing parts")
	}

	onHand, reserved, err := s.loadTotals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PartStatus, 0, len(parts))
	for _, part := range parts {
		total := onHand[part.ID]
		claimed := reserved[part.ID]
		available := total - claimed
		if available < 0 {
			available = 0
		}
		out = append(out, PartStatus{
			PartID:     part.ID,
			Name:       part.Name,
			TotalStock: total,
			Reserved:   claimed,
			Available:  available,
		})
	}
	return out, nil
}

func (s *service) Shortages(ctx context.Context) ([]Shortage, error) {
	parts, err := s.partRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing parts")
	}

	onHand, reserved, err := s.loadTotals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Shortage, 0)
	for _, part := range parts {
		missing := reserved[part.ID] - onHand[part.ID]
		if missing > 0 {
			out = append(out, Shortage{PartID: part.ID, Name: part.Name, Missing: missing})
		}
	}
	return out, nil
}

func (s *service) loadTotals(ctx context.Context) (map[uuid.UUID]int, map[uuid.UUID]int, error) {
	stockTotals, err := s.repo.SumByPart(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "summing stock")
	}
	reservedTotals, err := s.resRepo.SumByPart(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "summing reservations")
	}

	onHand := make(map[uuid.UUID]int, len(stockTotals))
	for _, row := range stockTotals {
		onHand[row.PartID] = row.Quantity
	}
	reserved := make(map[uuid.UUID]int, len(reservedTotals))
	for _, row := range reservedTotals {
		reserved[row.PartID] = row.Quantity
	}
	return onHand, reserved, nil
}
