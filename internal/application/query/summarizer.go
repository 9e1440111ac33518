// Package query contains read operations (CQRS - Queries).
// Handlers compose the stores into the views the presentation layer renders.
package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE SUMMARIES
// Video count and total duration are never stored on a course; every view
// that lists courses derives them from the video store through Summarizer.
// ══════════════════════════════════════════════════════════════════════════════

// CourseSummary is a course together with its derived figures.
type CourseSummary struct {
	course.Course
	course.Summary
}

// DefaultFanoutLimit bounds concurrent video lookups per request.
const DefaultFanoutLimit = 8

// Summarizer derives course.Summary values, optionally through a cache.
type Summarizer struct {
	videos video.Repository
	cache  course.SummaryCache
	limit  int
	log    *logger.Logger
}

// NewSummarizer creates a Summarizer. cache may be nil.
func NewSummarizer(videos video.Repository, cache course.SummaryCache, limit int, log *logger.Logger) *Summarizer {
	if limit <= 0 {
		limit = DefaultFanoutLimit
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Summarizer{
		videos: videos,
		cache:  cache,
		limit:  limit,
		log:    log.With(logger.Component("summarizer")),
	}
}

// Summarize returns the summary of one course.
// A failing cache is logged and bypassed.
func (s *Summarizer) Summarize(ctx context.Context, courseID int) (*course.Summary, error) {
	log := logger.FromContext(ctx, s.log)

	if s.cache != nil {
		cached, ok, err := s.cache.GetSummary(ctx, courseID)
		switch {
		case err != nil:
			log.Warn("summary cache read failed", logger.CourseID(courseID), logger.Err(err))
		case ok:
			return cached, nil
		}
	}

	videos, err := s.videos.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summary := &course.Summary{
		CourseID:       courseID,
		VideoCount:     len(videos),
		TotalDuration:  video.TotalDuration(videos),
		CompletedCount: video.CompletedCount(videos),
	}

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, summary); err != nil {
			log.Warn("summary cache write failed", logger.CourseID(courseID), logger.Err(err))
		}
	}

	return summary, nil
}

// SummarizeAll summarizes courses concurrently and keeps their order.
// A course whose videos cannot be read gets a zero summary; only
// cancellation of ctx fails the whole call.
func (s *Summarizer) SummarizeAll(ctx context.Context, courses []*course.Course) ([]CourseSummary, error) {
	out := make([]CourseSummary, len(courses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, c := range courses {
		out[i] = CourseSummary{Course: *c, Summary: course.Summary{CourseID: c.ID}}
		g.Go(func() error {
			summary, err := s.Summarize(gctx, c.ID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.FromContext(ctx, s.log).Warn("course summary unavailable",
					logger.CourseID(c.ID), logger.Err(err))
				return nil
			}
			out[i].Summary = *summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// filterCourses keeps the summaries whose course matches query.
func filterCourses(items []CourseSummary, query string) []CourseSummary {
	out := make([]CourseSummary, 0, len(items))
	for i := range items {
		if items[i].Course.Matches(query) {
			out = append(out, items[i])
		}
	}
	return out
}

// firstN returns at most n leading elements.
func firstN[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
