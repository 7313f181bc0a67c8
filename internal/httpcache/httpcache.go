// Package httpcache is the read-path cache for upstream glowdesk API calls.
// It gives idempotent GETs two things: a time-boxed response cache and
// in-flight coalescing, so concurrent callers asking for the same resource
// share one network round trip.
package httpcache

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glowdesk/walletd/pkg/logger"
)

// DefaultTTL is how long a cached response stays fresh unless overridden.
const DefaultTTL = 5 * time.Minute

// Options controls caching behavior for a single fetch.
type Options struct {
	// Cache enables storing and serving the response for this key.
	Cache bool
	// TTL overrides DefaultTTL when positive.
	TTL time.Duration
}

// Loader performs the underlying request when the cache cannot answer.
type Loader func(ctx context.Context) ([]byte, error)

// Fetcher coordinates the cache store and in-flight request coalescing.
type Fetcher struct {
	store  Store
	group  singleflight.Group
	logger *logger.Logger
}

// NewFetcher creates a fetcher backed by the given store
func NewFetcher(store Store, log *logger.Logger) *Fetcher {
	return &Fetcher{
		store:  store,
		logger: log.WithField("component", "httpcache"),
	}
}

// Key builds the logical request identity used as a cache key. Auth
// material never goes into it: two users asking for the same resource are
// the same request as far as coalescing is concerned.
func Key(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// Do returns the response for key, from cache when possible. Cache misses
// invoke loader, with identical in-flight keys coalesced onto one call:
// every waiter gets the same bytes or the same error. Failed loads are
// never cached, and the in-flight entry is dropped either way so the next
// call after a failure retries.
func (f *Fetcher) Do(ctx context.Context, key string, opts Options, loader Loader) ([]byte, error) {
	if opts.Cache {
		body, ok, err := f.store.Get(ctx, key)
		if err != nil {
			// A broken store downgrades to a miss, never to a failed fetch
			f.logger.Warn("cache store read failed", "key", key, "error", err)
		} else if ok {
			f.logger.Debug("cache hit", "key", key)
			return body, nil
		}
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// The load runs detached from the first caller's cancellation: a caller
	// that abandons the fetch must not fail it for the coalesced waiters,
	// and a completed load may still populate the cache for later callers.
	loadCtx := context.WithoutCancel(ctx)

	v, err, shared := f.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		body, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}

		if opts.Cache {
			if err := f.store.Set(loadCtx, key, body, ttl); err != nil {
				f.logger.Warn("cache store write failed", "key", key, "error", err)
			}
		}

		f.logger.Debug("load complete", "key", key, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		f.logger.Debug("request coalesced", "key", key)
	}
	return v.([]byte), nil
}

// Invalidate drops one cache entry; call it after any write that could
// change the corresponding read.
func (f *Fetcher) Invalidate(ctx context.Context, key string) {
	if err := f.store.Delete(ctx, key); err != nil {
		f.logger.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

// InvalidateAll drops the entire cache.
func (f *Fetcher) InvalidateAll(ctx context.Context) {
	if err := f.store.Clear(ctx); err != nil {
		f.logger.Warn("cache clear failed", "error", err)
	}
}
