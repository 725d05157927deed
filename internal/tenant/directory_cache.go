package tenant

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RepositoryDirectory adapts a Repository to the Directory interface used by
// the Resolver.
type RepositoryDirectory struct {
	Repo Repository
}

func (d RepositoryDirectory) TenantExists(ctx context.Context, id string) (bool, error) {
	return d.Repo.Exists(ctx, id)
}

// CachedDirectory fronts a Directory with a Redis cache. Existence checks run
// on every privileged override, so the hot path avoids a database round trip.
// Only positive answers are cached: a negative result must stay fresh, since
// an operator typically retries right after creating the missing tenant.
type CachedDirectory struct {
	next Directory
	rdb  redis.UniversalClient
	ttl  time.Duration
}

// NewCachedDirectory wraps next with a Redis-backed cache using the given TTL.
func NewCachedDirectory(next Directory, rdb redis.UniversalClient, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl}
}

func directoryKey(id string) string {
	return "tenant:exists:" + id
}

func (d *CachedDirectory) TenantExists(ctx context.Context, id string) (bool, error) {
	if v, err := d.rdb.Get(ctx, directoryKey(id)).Result(); err == nil && v == "1" {
		return true, nil
	}

	exists, err := d.next.TenantExists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		// Cache failures are ignored; the source of truth already answered.
		_ = d.rdb.Set(ctx, directoryKey(id), "1", d.ttl).Err()
	}
	return exists, nil
}

// Invalidate drops the cached entry for a tenant. Called after purge so a
// removed tenant stops resolving as soon as the cache entry is gone.
func (d *CachedDirectory) Invalidate(ctx context.Context, id string) {
	_ = d.rdb.Del(ctx, directoryKey(id)).Err()
}
