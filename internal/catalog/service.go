package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	dbpkg "github.com/raktarhub/raktarhub-backend/pkg/db"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
)

// Service defines part catalog operations.
type Service interface {
	CreatePart(ctx context.Context, input CreatePartInput) (*models.Part, error)
	UpdatePartPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	GetPart(ctx context.Context, id uuid.UUID) (*models.Part, error)
	ListParts(ctx context.Context) ([]models.Part, error)
}

// CreatePartInput carries the validated fields for a new catalog part.
type CreatePartInput struct {
	Name       string
	Price      decimal.Decimal
	MaxPerRack int
}

type service struct {
	repo     Repository
	notifier cache.Invalidator
}

// NewService wires a catalog service with the required dependencies.
func NewService(repo Repository, notifier cache.Invalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	return &service{repo: repo, notifier: notifier}, nil
}

func (s *service) CreatePart(ctx context.Context, input CreatePartInput) (*models.Part, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part name is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive").
			WithDetails(map[string]any{"price": input.Price.String()})
	}
	if input.MaxPerRack <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max quantity per rack must be positive").
			WithDetails(map[string]any{"max_per_rack": input.MaxPerRack})
	}

	part := &models.Part{
		ID:         uuid.New(),
		Name:       input.Name,
		Price:      input.Price,
		MaxPerRack: input.MaxPerRack,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_parts_name") || dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "a part with this name already exists").
				WithDetails(map[string]any{"name": input.Name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating part")
	}

	s.notifier.Invalidate(ctx, cache.ViewParts, cache.ViewStockStatus)
	return part, nil
}

func (s *service) UpdatePartPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "part id required")
	}
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive").
			WithDetails(map[string]any{"price": price.String()})
	}

	affected, err := s.repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating part price")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "part not found").
			WithDetails(map[string]any{"part_id": id})
	}

	s.notifier.Invalidate(ctx, cache.ViewParts, cache.ViewStockStatus)
	return nil
}

func (s *service) GetPart(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found").
				WithDetails(map[string]any{"part_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading part")
	}
	return part, nil
}

func (s *service) ListParts(ctx context.Context) ([]models.Part, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing parts")
	}
	return rows, nil
}
