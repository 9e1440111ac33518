package redis

import (
	"context"
	"errors"
	"time"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/pkg/circuitbreaker"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

var _ course.SummaryCache = (*SummaryCache)(nil)

// SummaryCache implements course.SummaryCache using generic Redis Cache.
// Calls go through a circuit breaker; while it is open every call fails fast
// with circuitbreaker.ErrCircuitOpen.
type SummaryCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewSummaryCache creates a SummaryCache. A non-positive ttl uses TTLCourseSummary.
func NewSummaryCache(cache *Cache, ttl time.Duration, log *logger.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = TTLCourseSummary
	}
	return &SummaryCache{
		cache:   cache,
		ttl:     ttl,
		breaker: circuitbreaker.CacheBreaker(log, isBackendFailure),
	}
}

// isBackendFailure keeps misses and caller mistakes from opening the circuit.
func isBackendFailure(err error) bool {
	return !errors.Is(err, ErrCacheMiss) &&
		!errors.Is(err, ErrCacheKeyEmpty) &&
		!errors.Is(err, ErrCacheNilValue) &&
		!errors.Is(err, ErrCacheInvalidTTL) &&
		!errors.Is(err, context.Canceled)
}

// GetSummary returns the cached summary of a course.
func (s *SummaryCache) GetSummary(ctx context.Context, courseID int) (*course.Summary, bool, error) {
	summary, err := circuitbreaker.Call(ctx, s.breaker, func(ctx context.Context) (*course.Summary, error) {
		var summary course.Summary
		if err := s.cache.Get(ctx, CourseSummaryKey(courseID), &summary); err != nil {
			return nil, err
		}
		return &summary, nil
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return summary, true, nil
}

// SetSummary caches a summary for the configured TTL.
func (s *SummaryCache) SetSummary(ctx context.Context, summary *course.Summary) error {
	if summary == nil {
		return ErrCacheNilValue
	}
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Set(ctx, CourseSummaryKey(summary.CourseID), summary, s.ttl)
	})
}

// Invalidate drops the summary of one course.
func (s *SummaryCache) Invalidate(ctx context.Context, courseID int) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Delete(ctx, CourseSummaryKey(courseID))
	})
}

// InvalidateAll drops every course summary.
func (s *SummaryCache) InvalidateAll(ctx context.Context) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.DeleteByPattern(ctx, PrefixCourseSummary+"*")
	})
}

// BreakerState reports the state of the circuit in front of Redis.
func (s *SummaryCache) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}
