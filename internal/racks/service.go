package racks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raktarhub/raktarhub-backend/internal/cache"
	dbpkg "github.com/raktarhub/raktarhub-backend/pkg/db"
	"github.com/raktarhub/raktarhub-backend/pkg/db/models"
	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
)

// Service defines rack registry operations.
type Service interface {
	CreateRack(ctx context.Context, input CreateRackInput) (*models.Rack, error)
	ListRacks(ctx context.Context) ([]models.Rack, error)
}

// CreateRackInput carries the validated fields for a new rack.
type CreateRackInput struct {
	Row      int
	Column   int
	Level    int
	Capacity int
}

type service struct {
	repo     Repository
	notifier cache.Invalidator
}

// NewService wires a rack service with the required dependencies.
func NewService(repo Repository, notifier cache.Invalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rack repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	return &service{repo: repo, notifier: notifier}, nil
}

func (s *service) CreateRack(ctx context.Context, input CreateRackInput) (*models.Rack, error) {
	if input.Row <= 0 || input.Column <= 0 || input.Level <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "row, column and level must be positive").
			WithDetails(map[string]any{"row": input.Row, "column": input.Column, "level": input.Level})
	}
	if input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must not be negative")
	}

	rack := &models.Rack{
		ID:       uuid.New(),
		Row:      input.Row,
		Column:   input.Column,
		Level:    input.Level,
		Capacity: input.Capacity,
	}
	if err := s.repo.Create(ctx, rack); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "a rack already exists at this position").
				WithDetails(map[string]any{"row": input.Row, "column": input.Column, "level": input.Level})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating rack")
	}

	s.notifier.Invalidate(ctx, cache.ViewRacks)
	return rack, nil
}

func (s *service) ListRacks(ctx context.Context) ([]models.Rack, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing racks")
	}
	return rows, nil
}

// FindByPosition resolves a rack by its physical coordinates, translating a
// missing row into a NotFound error the callers can surface directly.
func FindByPosition(ctx context.Context, repo Repository, row, column, level int) (*models.Rack, error) {
	rack, err := repo.FindByPosition(ctx, row, column, level)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no rack at the given position").
				WithDetails(map[string]any{"row": row, "column": column, "level": level})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "resolving rack position")
	}
	return rack, nil
}
