// Package rediscache caches media resolutions in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultPrefix        = "moodqueue:resolve:"
	DefaultLookupTimeout = 10 * time.Second
)

// Options configures a Resolver. Zero values fall back to defaults.
type Options struct {
	TTL    time.Duration
	Prefix string
	// LookupTimeout bounds one shared upstream resolution.
	LookupTimeout time.Duration
}

// Resolver wraps a MediaResolver with a Redis read-through cache. Only hits
// are cached. Concurrent lookups of the same query share one upstream call.
// Redis failures are logged and the inner resolver is used directly.
type Resolver struct {
	inner   ports.MediaResolver
	client  redis.UniversalClient
	ttl     time.Duration
	prefix  string
	timeout time.Duration
	sf      singleflight.Group
	log     *zap.Logger
}

var _ ports.MediaResolver = (*Resolver)(nil)

type cachedRef struct {
	MediaID   string   `json:"videoId"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}

type result struct {
	ref domain.MediaRef
	ok  bool
}

func NewResolver(inner ports.MediaResolver, client redis.UniversalClient, opts Options, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	timeout := opts.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Resolver{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		prefix:  prefix,
		timeout: timeout,
		log:     log.With(zap.String("adapter", "rediscache")),
	}
}

// Resolve serves query from the cache, or from the inner resolver on a miss.
// The upstream call is shared by concurrent callers and runs detached from
// any single caller's cancellation, bounded by the lookup timeout; a caller
// whose ctx ends first gets a miss without affecting the others.
func (r *Resolver) Resolve(ctx context.Context, query string) (domain.MediaRef, bool) {
	key := r.Key(query)

	if ref, ok := r.lookup(ctx, key); ok {
		return ref, true
	}

	ch := r.sf.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		ref, ok := r.inner.Resolve(callCtx, query)
		if ok {
			r.store(callCtx, key, ref)
		}
		return result{ref: ref, ok: ok}, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.log.Debug("resolve shared", zap.String("query", query))
		}
		v := res.Val.(result)
		return v.ref, v.ok
	case <-ctx.Done():
		r.log.Debug("resolve abandoned", zap.String("query", query), zap.Error(ctx.Err()))
		return domain.MediaRef{}, false
	}
}

// Key returns the cache key for query. Case and whitespace are folded.
func (r *Resolver) Key(query string) string {
	return r.prefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (r *Resolver) lookup(ctx context.Context, key string) (domain.MediaRef, bool) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.MediaRef{}, false
	}
	if err != nil {
		r.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return domain.MediaRef{}, false
	}

	var cached cachedRef
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.MediaID == "" {
		r.log.Warn("dropping corrupt cache entry", zap.String("key", key))
		_ = r.client.Del(ctx, key).Err()
		return domain.MediaRef{}, false
	}
	ref := domain.MediaRef{MediaID: cached.MediaID, ThumbnailURL: cached.Thumbnail}
	if cached.Score != nil {
		ref.Score, ref.Scored = *cached.Score, true
	}
	return ref, true
}

func (r *Resolver) store(ctx context.Context, key string, ref domain.MediaRef) {
	entry := cachedRef{MediaID: ref.MediaID, Thumbnail: ref.ThumbnailURL}
	if ref.Scored {
		score := ref.Score
		entry.Score = &score
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}
