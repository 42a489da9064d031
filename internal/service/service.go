// Package service is the application layer shared by the HTTP API, the MCP
// tools and the CLIs. It validates input, fills defaults, talks to the
// repository and caches leaderboards.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/fitlife/internal/observability"
	"github.com/claude/fitlife/internal/storage"
	"github.com/coocood/freecache"
)

const (
	megabyte        = 1024 * 1024
	defaultCacheTTL = 60 * time.Second
)

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	// CacheSizeMB sizes the leaderboard cache. Negative disables caching.
	CacheSizeMB int
	CacheTTL    time.Duration
	// Now is the clock used for default dates.
	Now func() time.Time
}

// Service coordinates the domain packages over one repository.
type Service struct {
	repo     *storage.Repository
	logger   *slog.Logger
	cache    *freecache.Cache
	cacheTTL int
	now      func() time.Time
}

// New builds a Service over repo.
func New(repo *storage.Repository, logger *slog.Logger, opts Options) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	s.cacheTTL = max(1, int(ttl/time.Second))

	switch {
	case opts.CacheSizeMB < 0:
	case opts.CacheSizeMB == 0:
		s.cache = freecache.NewCache(8 * megabyte)
	default:
		s.cache = freecache.NewCache(opts.CacheSizeMB * megabyte)
	}
	return s
}

// Repository exposes the underlying repository to the importer.
func (s *Service) Repository() *storage.Repository {
	return s.repo
}

// cached returns the value stored under key, or computes and stores it.
// Keys embed the repository version, so any write invalidates every entry.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return compute(ctx)
	}

	fullKey := []byte(fmt.Sprintf("v%d::%s", s.repo.Version(), key))
	if data, err := s.cache.Get(fullKey); err == nil {
		var v T
		err = json.Unmarshal(data, &v)
		if err == nil {
			observability.RecordCacheLookup(true)
			return v, nil
		}
		s.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
	}
	observability.RecordCacheLookup(false)

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("encoding cache entry", "key", key, "error", err)
		return v, nil
	}
	if err := s.cache.Set(fullKey, data, s.cacheTTL); err != nil {
		s.logger.Debug("cache entry not stored", "key", key, "error", err)
	}
	return v, nil
}
