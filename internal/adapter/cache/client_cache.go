package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "crm-service/internal/domain/client"
)

// ClientCache stores clients by id. Every id has a version that Delete
// bumps, so a fill that read the database before an invalidation can be
// rejected by SetIfVersion.
type ClientCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	// Version returns the current version of id, 0 when never invalidated.
	Version(ctx context.Context, id uuid.UUID) (int64, error)
	// SetIfVersion stores c only while its id is still at version. It reports
	// whether the value was written.
	SetIfVersion(ctx context.Context, c *domain.Client, version int64) (bool, error)
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// versionTTL outlives any in-flight fill so an expired version cannot match
// a stale read.
const versionTTL = 24 * time.Hour

// setIfVersion writes ARGV[2] to KEYS[1] with a PX of ARGV[3] when the
// version in KEYS[2] equals ARGV[1].
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisClientCache implements ClientCache on Redis.
type RedisClientCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisClientCache creates a new Redis-backed client cache.
func NewRedisClientCache(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisClientCache {
	return &RedisClientCache{client: client, ttl: ttl, log: log}
}

// Key returns the Redis key of a client id. The hash tag keeps the value and
// its version in one cluster slot.
func Key(id uuid.UUID) string {
	return fmt.Sprintf("crm:client:{%s}", id)
}

// VersionKey returns the Redis key holding the version of a client id.
func VersionKey(id uuid.UUID) string {
	return Key(id) + ":v"
}

// Get retrieves a client from Redis.
func (c *RedisClientCache) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("client_id", id.String()))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("client_id", id.String()), zap.Error(err))
		return nil, err
	}

	var cl domain.Client
	if err := json.Unmarshal(data, &cl); err != nil {
		c.log.Error("failed to unmarshal cached client", zap.String("client_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &cl, nil
}

// Version returns the version of id.
func (c *RedisClientCache) Version(ctx context.Context, id uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetIfVersion stores cl unless its id was invalidated after version was read.
func (c *RedisClientCache) SetIfVersion(ctx context.Context, cl *domain.Client, version int64) (bool, error) {
	if cl == nil {
		return false, errors.New("cannot cache nil client")
	}

	data, err := json.Marshal(cl)
	if err != nil {
		return false, err
	}
	keys := []string{Key(cl.ID), VersionKey(cl.ID)}
	written, err := setIfVersion.Run(ctx, c.client, keys, strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Int64()
	if err != nil {
		c.log.Error("failed to set cache", zap.String("client_id", cl.ID.String()), zap.Error(err))
		return false, err
	}
	if written == 0 {
		c.log.Debug("stale cache fill skipped", zap.String("client_id", cl.ID.String()), zap.Int64("version", version))
	}
	return written == 1, nil
}

// Delete bumps the version of each id and then removes its value. A fill
// racing with Delete either fails its version check or is removed.
func (c *RedisClientCache) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, VersionKey(id))
			pipe.Expire(ctx, VersionKey(id), versionTTL)
			pipe.Del(ctx, Key(id))
		}
		return nil
	})
	if err != nil {
		c.log.Error("failed to delete from cache", zap.Int("count", len(ids)), zap.Error(err))
		return err
	}
	return nil
}
