package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
)

// SlugLocker serializes ingestions per slug. Ingestions for different
// slugs proceed in parallel; "read approved, build consensus, write"
// for one slug runs under this lock as a single unit.
type SlugLocker interface {
	Acquire(ctx context.Context, slug string) (release func(), err error)
}

// ---------------------------------------------------------------------
// In-process keyed mutex
// ---------------------------------------------------------------------

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*slugEntry
}

type slugEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns a process-local SlugLocker. Suitable for a
// single-instance deployment or as the fallback when redis is not
// configured.
func NewKeyedMutex() SlugLocker {
	return &keyedMutex{locks: make(map[string]*slugEntry)}
}

func (k *keyedMutex) Acquire(ctx context.Context, slug string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	e, ok := k.locks[slug]
	if !ok {
		e = &slugEntry{}
		k.locks[slug] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, slug)
			}
			k.mu.Unlock()
		})
	}
	return release, nil
}

// ---------------------------------------------------------------------
// Redis advisory lock
// ---------------------------------------------------------------------

const (
	redisLockTTL       = 30 * time.Second
	redisLockRetryWait = 100 * time.Millisecond
)

// Compare-and-delete so a lock that expired mid-ingestion is never
// released out from under its next holder.
var redisUnlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisSlugLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisSlugLock returns a SlugLocker backed by redis SET NX, for
// deployments running more than one ingestion worker.
func NewRedisSlugLock(log *logger.Logger, rdb *goredis.Client) (SlugLocker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisSlugLock{log: log.With("service", "RedisSlugLock"), rdb: rdb}, nil
}

func (r *redisSlugLock) Acquire(ctx context.Context, slug string) (func(), error) {
	key := "ingest:slug:" + slug
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, redisLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire slug lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockRetryWait):
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisUnlockScript.Run(relCtx, r.rdb, []string{key}, token).Err(); err != nil {
				r.log.Warn("slug lock release failed", "slug", slug, "error", err)
			}
		})
	}
	return release, nil
}
