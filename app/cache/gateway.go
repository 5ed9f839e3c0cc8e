package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/gesteves/kona/app/content"
	"github.com/gesteves/kona/app/metrics"
)

const (
	// DefaultKey identifies the whole site content snapshot.
	DefaultKey = "content:site"
	DefaultTTL = 5 * time.Minute
)

// Store is a byte-oriented key/value store with per-key expiry. Get reports
// ok=false for missing or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type ComputeFunc func(ctx context.Context) (*content.Content, error)

// Gateway memoizes a content computation in a Store. The store is an
// optimization only: its failures degrade to a fresh computation.
type Gateway struct {
	store    Store
	recorder metrics.Recorder
}

func NewGateway(store Store, recorder metrics.Recorder) *Gateway {
	if store == nil {
		store = NopStore{}
	}
	return &Gateway{store: store, recorder: metrics.OrNoop(recorder)}
}

// WithCache returns the snapshot stored under key when present and
// unexpired, without calling compute. Otherwise it calls compute and stores
// the result for ttl. Errors from compute are returned and nothing is stored.
// A ttl of zero or less disables caching: compute runs on every call.
func (g *Gateway) WithCache(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (*content.Content, error) {
	if ttl <= 0 {
		return compute(ctx)
	}

	if c, ok := g.lookup(ctx, key); ok {
		return c, nil
	}

	c, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(c)
	if err != nil {
		g.recorder.IncCacheResult(metrics.CacheError)
		slog.Warn("Failed to encode content snapshot", "key", key, "error", err)
		return c, nil
	}
	if err := g.store.Set(ctx, key, data, ttl); err != nil {
		g.recorder.IncCacheResult(metrics.CacheError)
		slog.Warn("Failed to store content snapshot", "key", key, "error", err)
		return c, nil
	}

	slog.Debug("Stored content snapshot", "key", key, "ttl", ttl, "bytes", len(data))
	return c, nil
}

// Invalidate drops the snapshot under key so the next call recomputes.
func (g *Gateway) Invalidate(ctx context.Context, key string) error {
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.store.Close()
}

func (g *Gateway) lookup(ctx context.Context, key string) (*content.Content, bool) {
	data, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.recorder.IncCacheResult(metrics.CacheError)
		slog.Warn("Cache read failed, recomputing", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		g.recorder.IncCacheResult(metrics.CacheMiss)
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	var c content.Content
	if err := json.Unmarshal(data, &c); err != nil {
		g.recorder.IncCacheResult(metrics.CacheError)
		slog.Warn("Discarding corrupt content snapshot", "key", key, "error", err)
		if err := g.store.Delete(ctx, key); err != nil {
			slog.Warn("Failed to delete corrupt content snapshot", "key", key, "error", err)
		}
		return nil, false
	}

	g.recorder.IncCacheResult(metrics.CacheHit)
	slog.Debug("Cache hit", "key", key)
	return &c, true
}

// NopStore never holds anything; every lookup is a miss.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, string) error                       { return nil }
func (NopStore) Close() error                                               { return nil }
