package cached

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"crm-service/internal/adapter/cache"
	domain "crm-service/internal/domain/client"
	"crm-service/internal/domain/paging"
	"crm-service/internal/usecase/client"
	"crm-service/pkg/metrics"
)

// ClientRepository implements client.Repository with a cache-aside lookup
// by id. Writes invalidate the cache once they are durable.
type ClientRepository struct {
	dbRepo client.Repository
	cache  cache.ClientCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ client.Repository = (*ClientRepository)(nil)

// fillTimeout bounds a shared cache fill.
const fillTimeout = 5 * time.Second

// NewClientRepository wraps dbRepo. A nil cache disables caching.
func NewClientRepository(dbRepo client.Repository, c cache.ClientCache, log *zap.Logger) *ClientRepository {
	return &ClientRepository{dbRepo: dbRepo, cache: c, log: log}
}

// FindByID retrieves a client using the cache first.
func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if r.cache == nil {
		return r.dbRepo.FindByID(ctx, id)
	}

	if c, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.String("id", id.String()), zap.Error(err))
	} else if c != nil {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return c, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	// One database read per id no matter how many callers missed together.
	// The fill runs detached from the first caller so its cancellation does
	// not fail the callers sharing the result.
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return r.fill(fillCtx, id)
	})
	if err != nil {
		return nil, err
	}

	c, _ := result.(*domain.Client)
	return c, nil
}

// fill reads id from the database and caches it unless the id was
// invalidated after the read started.
func (r *ClientRepository) fill(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	version, verr := r.cache.Version(ctx, id)
	if verr != nil {
		r.log.Warn("cache version error, skipping fill", zap.String("id", id.String()), zap.Error(verr))
	}

	c, err := r.dbRepo.FindByID(ctx, id)
	if err != nil || c == nil || verr != nil {
		return c, err
	}

	if _, err := r.cache.SetIfVersion(ctx, c, version); err != nil {
		r.log.Warn("failed to cache client", zap.String("id", id.String()), zap.Error(err))
	}
	return c, nil
}

// FindByIDForUpdate always reads the database.
func (r *ClientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return r.dbRepo.FindByIDForUpdate(ctx, id)
}

// FindByName delegates to the DB repository.
func (r *ClientRepository) FindByName(ctx context.Context, name string) ([]domain.Client, error) {
	return r.dbRepo.FindByName(ctx, name)
}

// FindByNamePage delegates to the DB repository.
func (r *ClientRepository) FindByNamePage(ctx context.Context, name string, page paging.Request) ([]domain.Client, error) {
	return r.dbRepo.FindByNamePage(ctx, name, page)
}

// Save writes the client and invalidates its cache entry.
func (r *ClientRepository) Save(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	saved, err := r.dbRepo.Save(ctx, c)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, saved.ID)
	return saved, nil
}

// DeleteByID deletes the client and invalidates its cache entry.
func (r *ClientRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.dbRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// Transaction runs fn in a database transaction and invalidates every client
// it wrote after the commit. A rolled back transaction leaves the cache alone.
func (r *ClientRepository) Transaction(ctx context.Context, fn func(tx client.Repository) error) error {
	var touched []uuid.UUID
	err := r.dbRepo.Transaction(ctx, func(tx client.Repository) error {
		return fn(&recordingRepository{Repository: tx, touched: &touched})
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, touched...)
	return nil
}

func (r *ClientRepository) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	if err := r.cache.Delete(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate client cache", zap.Int("count", len(ids)), zap.Error(err))
	}
}

// recordingRepository remembers which ids were written inside a transaction.
type recordingRepository struct {
	client.Repository
	touched *[]uuid.UUID
}

func (r *recordingRepository) Save(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	saved, err := r.Repository.Save(ctx, c)
	if err == nil {
		*r.touched = append(*r.touched, saved.ID)
	}
	return saved, err
}

func (r *recordingRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	err := r.Repository.DeleteByID(ctx, id)
	if err == nil {
		*r.touched = append(*r.touched, id)
	}
	return err
}
