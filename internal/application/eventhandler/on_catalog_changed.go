// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// SUMMARY INVALIDATOR
// Сбрасывает кэшированную сводку курса, когда меняется его программа:
// видео добавлено, удалено или просмотрено, либо удалён сам курс.
// ═══════════════════════════════════════════════════════════════════════════

// SummaryInvalidator drops cached course summaries on catalog events.
type SummaryInvalidator struct {
	cache course.SummaryCache
	log   *logger.Logger
}

// NewSummaryInvalidator creates a new SummaryInvalidator.
func NewSummaryInvalidator(cache course.SummaryCache, log *logger.Logger) *SummaryInvalidator {
	if log == nil {
		log = logger.Discard()
	}
	return &SummaryInvalidator{
		cache: cache,
		log:   log.With(logger.Component("summary_invalidator")),
	}
}

// EventTypes lists the events this handler reacts to.
func (h *SummaryInvalidator) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventVideoCreated,
		shared.EventVideoDeleted,
		shared.EventVideoCompleted,
		shared.EventCourseDeleted,
	}
}

// Register subscribes the handler to its events.
func (h *SummaryInvalidator) Register(sub shared.EventSubscriber) error {
	for _, t := range h.EventTypes() {
		if err := sub.Subscribe(t, h.Handle); err != nil {
			return fmt.Errorf("summary_invalidator: subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle invalidates the summary of the course the event belongs to.
// Реализует интерфейс shared.EventHandler.
func (h *SummaryInvalidator) Handle(event shared.Event) error {
	if h.cache == nil {
		return nil
	}
	ctx := context.Background()

	var courseID int
	switch e := event.(type) {
	case shared.VideoEvent:
		courseID = e.CourseID()
	case shared.CourseDeletedEvent:
		id, err := strconv.Atoi(e.AggregateID())
		if err != nil {
			return fmt.Errorf("summary_invalidator: bad aggregate id %q: %w", e.AggregateID(), err)
		}
		courseID = id
	default:
		h.log.Warn("unexpected event", logger.EventType(string(event.EventType())))
		return nil
	}

	if err := h.cache.Invalidate(ctx, courseID); err != nil {
		return fmt.Errorf("summary_invalidator: invalidate course %d: %w", courseID, err)
	}

	h.log.Debug("course summary invalidated",
		logger.CourseID(courseID),
		logger.EventType(string(event.EventType())),
	)
	return nil
}
