// Package cache keeps the catalog snapshot in memory, optionally shared
// through Redis, and drops it when Postgres signals a catalog change.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"renodevis/internal/domain/catalog"
	"renodevis/pkg/logger"
)

// SnapshotStore is a shared second-level store, usually Redis.
type SnapshotStore interface {
	Get(ctx context.Context) (*catalog.Snapshot, error)
	Set(ctx context.Context, snap *catalog.Snapshot) error
	Delete(ctx context.Context) error
}

// CatalogCache implements catalog.Provider over a slower provider.
type CatalogCache struct {
	source catalog.Provider
	remote SnapshotStore
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu       sync.RWMutex
	snap     *catalog.Snapshot
	loadedAt time.Time

	// LISTEN lifecycle
	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// CatalogCacheOption configures a CatalogCache.
type CatalogCacheOption func(*CatalogCache)

// WithRemote adds a shared second-level store.
func WithRemote(s SnapshotStore) CatalogCacheOption {
	return func(c *CatalogCache) { c.remote = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CatalogCacheOption {
	return func(c *CatalogCache) { c.now = now }
}

// NewCatalogCache caches source for ttl. A zero ttl caches until Invalidate.
func NewCatalogCache(source catalog.Provider, ttl time.Duration, opts ...CatalogCacheOption) *CatalogCache {
	c := &CatalogCache{source: source, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached snapshot, loading it at most once at a time.
func (c *CatalogCache) Load(ctx context.Context) (*catalog.Snapshot, error) {
	if snap := c.fresh(); snap != nil {
		return snap, nil
	}

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		if snap := c.fresh(); snap != nil {
			return snap, nil
		}
		return c.fill(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Snapshot), nil
}

func (c *CatalogCache) fresh() *catalog.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(c.loadedAt) >= c.ttl {
		return nil
	}
	return c.snap
}

func (c *CatalogCache) fill(ctx context.Context) (*catalog.Snapshot, error) {
	if c.remote != nil {
		snap, err := c.remote.Get(ctx)
		if err != nil {
			logger.Warn(ctx, "catalog remote cache unavailable", "error", err)
		}
		if snap != nil {
			c.store(snap)
			return snap, nil
		}
	}

	snap, err := c.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.store(snap)

	if c.remote != nil {
		if err := c.remote.Set(ctx, snap); err != nil {
			logger.Warn(ctx, "catalog remote cache write failed", "error", err)
		}
	}
	return snap, nil
}

func (c *CatalogCache) store(snap *catalog.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.loadedAt = c.now()
	c.mu.Unlock()
}

// Invalidate drops the local and the shared snapshot.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()

	if c.remote != nil {
		if err := c.remote.Delete(ctx); err != nil {
			logger.Warn(ctx, "catalog remote cache delete failed", "error", err)
		}
	}
	logger.Info(ctx, "catalog cache invalidated")
}

// Listen invalidates the cache on every NOTIFY received on channel until Stop.
func (c *CatalogCache) Listen(ctx context.Context, pool *pgxpool.Pool, channel string) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.listenLoop(ctx, pool, channel)
}

// Stop ends the LISTEN loop and waits for it.
func (c *CatalogCache) Stop() {
	c.lifecycleMu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
		c.wg.Wait()
	}
}

func (c *CatalogCache) listenLoop(ctx context.Context, pool *pgxpool.Pool, channel string) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "failed to acquire connection for LISTEN", "error", err)
			sleep(ctx, time.Second)
			continue
		}

		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			logger.Error(ctx, "failed to LISTEN", "channel", channel, "error", err)
			conn.Release()
			sleep(ctx, time.Second)
			continue
		}
		logger.Info(ctx, "listening for catalog changes", "channel", channel)

		c.waitForNotifications(ctx, conn)
		conn.Release()
	}
}

func (c *CatalogCache) waitForNotifications(ctx context.Context, conn *pgxpool.Conn) {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(waitCtx)
		timedOut := waitTimedOut(waitCtx, err)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if timedOut {
				continue
			}
			// Broken connection: reacquire.
			logger.Warn(ctx, "LISTEN connection lost", "error", err)
			return
		}

		logger.Debug(ctx, "received notification", "channel", n.Channel)
		c.Invalidate(ctx)
	}
}

// waitTimedOut reports whether err ended an idle wait on waitCtx. It must be
// called before waitCtx is cancelled.
func waitTimedOut(waitCtx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var _ catalog.Provider = (*CatalogCache)(nil)
