package cache

import (
	"context"

	"github.com/raktarhub/raktarhub-backend/pkg/logger"
	"github.com/raktarhub/raktarhub-backend/pkg/redis"
)

// Read-model views the core invalidates after state-changing operations.
// Delivery and re-population are owned by the presentation layer.
const (
	ViewProjects    = "projects"
	ViewStockStatus = "stock_status"
	ViewShortages   = "shortages"
	ViewRacks       = "racks"
	ViewParts       = "parts"
)

// Invalidator drops cached read-model views after a successful mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, views ...string)
}

type redisInvalidator struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewRedisInvalidator returns an Invalidator that deletes view keys in redis.
func NewRedisInvalidator(client *redis.Client, logg *logger.Logger) Invalidator {
	return &redisInvalidator{client: client, logg: logg}
}

func (r *redisInvalidator) Invalidate(ctx context.Context, views ...string) {
	if r.client == nil || len(views) == 0 {
		return
	}
	keys := make([]string, 0, len(views))
	for _, view := range views {
		keys = append(keys, r.client.ViewKey(view))
	}
	// Best effort: a stale cached view is tolerable, a failed mutation is not.
	if err := r.client.Del(ctx, keys...); err != nil && r.logg != nil {
		r.logg.Warn(r.logg.WithField(ctx, "views", views), "failed to invalidate cached views")
	}
}

type nopInvalidator struct{}

// NewNopInvalidator returns an Invalidator that does nothing. Used when no
// redis endpoint is configured.
func NewNopInvalidator() Invalidator {
	return nopInvalidator{}
}

func (nopInvalidator) Invalidate(context.Context, ...string) {}
