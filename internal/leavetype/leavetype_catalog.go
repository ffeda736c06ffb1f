package leavetype

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	catalogCacheKey = "leavetype:catalog"
	catalogCacheTTL = 10 * time.Minute
)

// Catalog serves the leave type names used to populate the request form
// dropdown. Opening a modal is the hottest read path in the app, so the
// list is cached in Redis and concurrent cache misses are collapsed
// through singleflight.
type Catalog struct {
	repo   Repository
	rdb    *redis.Client
	group  singleflight.Group
	logger *zap.Logger
}

func NewCatalog(repo Repository, rdb *redis.Client, logger ...*zap.Logger) *Catalog {
	l := zap.L().Named("leavetype.catalog")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.catalog")
	}
	return &Catalog{repo: repo, rdb: rdb, logger: l}
}

// Names returns all leave type names, sorted. A Redis outage degrades to
// a direct database read rather than failing the modal.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var names []string
			if jsonErr := json.Unmarshal([]byte(val), &names); jsonErr == nil {
				return names, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("leave type catalog cache read failed", zap.Error(err))
		}
	}

	v, err, _ := c.group.Do(catalogCacheKey, func() (any, error) {
		types, err := c.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(types))
		for i, lt := range types {
			names[i] = lt.Name
		}

		if c.rdb != nil {
			if payload, err := json.Marshal(names); err == nil {
				if err := c.rdb.Set(ctx, catalogCacheKey, payload, catalogCacheTTL).Err(); err != nil {
					c.logger.Warn("leave type catalog cache write failed", zap.Error(err))
				}
			}
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Invalidate drops the cached list after catalog mutations.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, catalogCacheKey).Err()
}
