package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	userRepo "calendo/database/repository/user"
	"calendo/models"
	"calendo/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by a WorkerCache when the key is absent.
var ErrCacheMiss = errors.New("worker cache miss")

// WorkerCache stores the serialized directory between requests.
type WorkerCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisWorkerCache struct {
	client *redis.Client
}

// NewRedisWorkerCache adapts a go-redis client to WorkerCache.
func NewRedisWorkerCache(client *redis.Client) WorkerCache {
	return &redisWorkerCache{client: client}
}

func (c *redisWorkerCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (c *redisWorkerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisWorkerCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// WorkerDirectory lists the active workers in id order. Results are cached;
// any cache failure falls through to the user store.
type WorkerDirectory struct {
	users  userRepo.UserRepository
	cache  WorkerCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewWorkerDirectory(users userRepo.UserRepository, cache WorkerCache, ttl time.Duration, logger *zap.Logger) *WorkerDirectory {
	if ttl <= 0 {
		ttl = utils.DefaultWorkerCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerDirectory{users: users, cache: cache, ttl: ttl, logger: logger}
}

func (d *WorkerDirectory) Workers(ctx context.Context) ([]models.Worker, error) {
	if d.cache != nil {
		raw, err := d.cache.Get(ctx, utils.WorkerCacheKey)
		if err == nil {
			var workers []models.Worker
			if jerr := json.Unmarshal(raw, &workers); jerr == nil {
				return workers, nil
			}
			d.logger.Warn("Discarding unreadable worker cache entry")
		} else if !errors.Is(err, ErrCacheMiss) {
			d.logger.Warn("Worker cache read failed", zap.Error(err))
		}
	}

	users, err := d.users.GetWorkers(ctx)
	if err != nil {
		return nil, err
	}
	workers := make([]models.Worker, 0, len(users))
	for _, u := range users {
		workers = append(workers, models.Worker{ID: u.ID, Name: u.FirstName})
	}

	if d.cache != nil {
		if data, err := json.Marshal(workers); err == nil {
			if err := d.cache.Set(ctx, utils.WorkerCacheKey, data, d.ttl); err != nil {
				d.logger.Warn("Worker cache write failed", zap.Error(err))
			}
		}
	}
	return workers, nil
}

// Invalidate drops the cached directory. Called after any user write.
func (d *WorkerDirectory) Invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Del(ctx, utils.WorkerCacheKey); err != nil {
		d.logger.Warn("Worker cache invalidation failed", zap.Error(err))
	}
}

// directory wraps Workers with the engine's error taxonomy.
func (e *Engine) directory(ctx context.Context) ([]models.Worker, error) {
	workers, err := e.Workers.Workers(ctx)
	if err != nil {
		return nil, persistence("load worker directory", err)
	}
	return workers, nil
}
