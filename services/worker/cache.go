package worker

import (
	"context"
	"errors"
	"time"

	"sewa/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	workerCachePrefix   = "worker:"
	workerVersionPrefix = "worker:version:"
	// versionTTL must outlive any in-flight fill.
	versionTTL = 24 * time.Hour
)

// SnapshotCache holds recently read worker records. A miss or a cache error is
// reported as ok == false; callers fall back to the repository.
//
// Get also returns the fill version. Set stores the snapshot only when no
// Invalidate happened since that version was read, so a fill racing a write
// never puts the pre-write record back.
type SnapshotCache interface {
	Get(ctx context.Context, id string) (w *models.Worker, version int64, ok bool)
	Set(ctx context.Context, w *models.Worker, version int64)
	Invalidate(ctx context.Context, id string)
}

// RedisSnapshotCache stores BSON-encoded worker snapshots in Redis.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, id string) (*models.Worker, int64, bool) {
	pipe := c.client.Pipeline()
	snapshot := pipe.Get(ctx, workerCachePrefix+id)
	version := pipe.Get(ctx, workerVersionPrefix+id)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("worker cache read failed", zap.String("workerID", id), zap.Error(err))
		return nil, -1, false
	}

	v, err := version.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("worker cache version unreadable", zap.String("workerID", id), zap.Error(err))
		return nil, -1, false
	}

	raw, err := snapshot.Bytes()
	if err != nil {
		return nil, v, false
	}
	var w models.Worker
	if err := bson.Unmarshal(raw, &w); err != nil {
		c.logger.Warn("worker cache entry unreadable", zap.String("workerID", id), zap.Error(err))
		return nil, v, false
	}
	return &w, v, true
}

var errStaleFill = errors.New("worker invalidated during fill")

func (c *RedisSnapshotCache) Set(ctx context.Context, w *models.Worker, version int64) {
	if version < 0 {
		return
	}
	raw, err := bson.Marshal(w)
	if err != nil {
		c.logger.Warn("worker cache encode failed", zap.String("workerID", w.ID), zap.Error(err))
		return
	}

	versionKey := workerVersionPrefix + w.ID
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, workerCachePrefix+w.ID, raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("skipped stale worker cache fill", zap.String("workerID", w.ID))
	default:
		c.logger.Warn("worker cache write failed", zap.String("workerID", w.ID), zap.Error(err))
	}
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, id string) {
	versionKey := workerVersionPrefix + id
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, workerCachePrefix+id)
		return nil
	})
	if err != nil {
		c.logger.Warn("worker cache invalidate failed", zap.String("workerID", id), zap.Error(err))
	}
}

// NoopSnapshotCache never caches.
type NoopSnapshotCache struct{}

func (NoopSnapshotCache) Get(context.Context, string) (*models.Worker, int64, bool) {
	return nil, -1, false
}
func (NoopSnapshotCache) Set(context.Context, *models.Worker, int64) {}
func (NoopSnapshotCache) Invalidate(context.Context, string)         {}
