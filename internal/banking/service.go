package banking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/RohithAchar/oxm-sub002/internal/platform/cache"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

// Fetcher loads branch data from the upstream directory.
type Fetcher interface {
	Fetch(ctx context.Context, code string) (*Branch, error)
}

// LookupRecorder observes lookup outcomes.
type LookupRecorder interface {
	ObserveIFSCLookup(source string)
}

// Service resolves IFSC codes through a Redis cache in front of the directory.
type Service struct {
	fetcher Fetcher
	cache   *cache.JSONCache
	logger  *slog.Logger
	metrics LookupRecorder
	group   singleflight.Group
}

// NewService wires the lookup. cache and metrics may be nil.
func NewService(fetcher Fetcher, c *cache.JSONCache, logger *slog.Logger, metrics LookupRecorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, cache: c, logger: logger, metrics: metrics}
}

// Lookup returns the branch for code. Cache failures never fail the lookup.
func (s *Service) Lookup(ctx context.Context, code string) (*Branch, error) {
	code = NormalizeIFSC(code)
	if !ValidIFSC(code) {
		return nil, httpx.Invalid("invalid IFSC %q", code)
	}

	var cached Branch
	err := s.cache.GetJSON(ctx, code, &cached)
	switch {
	case err == nil:
		s.observe("cache")
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("ifsc cache read failed", slog.String("ifsc", code), slog.Any("error", err))
	}

	v, err, _ := s.group.Do(code, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		branch, err := s.fetcher.Fetch(fetchCtx, code)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetJSON(fetchCtx, code, branch); err != nil {
			s.logger.Warn("ifsc cache write failed", slog.String("ifsc", code), slog.Any("error", err))
		}
		return branch, nil
	})
	if err != nil {
		s.observe("error")
		return nil, err
	}
	s.observe("upstream")
	branch := *v.(*Branch)
	return &branch, nil
}

func (s *Service) observe(source string) {
	if s.metrics != nil {
		s.metrics.ObserveIFSCLookup(source)
	}
}
