package command

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/config"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE COURSE COMMAND
// Removes a course. Its videos stay behind as orphans unless the
// catalog.cascade_video_delete flag is on.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteCourseCommand identifies the course to delete.
type DeleteCourseCommand struct {
	// CourseID is the raw identifier received from the caller.
	CourseID string
}

// DeleteCourseResult describes what was removed.
type DeleteCourseResult struct {
	CourseID      int
	Cascaded      bool
	DeletedVideos []int
	OrphanedCount int
}

// DeleteCourseHandler handles the DeleteCourseCommand.
type DeleteCourseHandler struct {
	courses        course.Repository
	videos         video.Repository
	eventPublisher shared.EventPublisher
	features       FeatureChecker
	clock          timeutil.Clock
	log            *logger.Logger
}

// NewDeleteCourseHandler creates a new DeleteCourseHandler. features may be nil.
func NewDeleteCourseHandler(
	courses course.Repository,
	videos video.Repository,
	eventPublisher shared.EventPublisher,
	features FeatureChecker,
	clock timeutil.Clock,
	log *logger.Logger,
) *DeleteCourseHandler {
	if features == nil {
		features = noFeatures{}
	}
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DeleteCourseHandler{
		courses:        courses,
		videos:         videos,
		eventPublisher: eventPublisher,
		features:       features,
		clock:          clock,
		log:            log.With(logger.Component("delete_course")),
	}
}

// Handle executes the delete course command.
func (h *DeleteCourseHandler) Handle(ctx context.Context, cmd DeleteCourseCommand) (*DeleteCourseResult, error) {
	id, err := shared.ParseID(shared.DomainCourse, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("delete_course: %w", err)
	}

	if err := h.courses.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete_course: failed to delete course: %w", err)
	}

	result := &DeleteCourseResult{
		CourseID: id,
		Cascaded: h.features.IsEnabled(config.FeatureCascadeVideoDelete),
	}
	log := logger.FromContext(ctx, h.log)

	videos, err := h.videos.GetByCourseID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete_course: failed to list videos: %w", err)
	}

	if result.Cascaded {
		for _, v := range videos {
			if err := h.videos.Delete(ctx, v.ID); err != nil {
				if shared.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("delete_course: failed to delete video %d: %w", v.ID, err)
			}
			result.DeletedVideos = append(result.DeletedVideos, v.ID)
			_ = h.eventPublisher.Publish(shared.NewVideoEvent(shared.EventVideoDeleted, id, v.ID, v.Duration, v.Order, h.clock.Now()))
		}
	} else {
		result.OrphanedCount = len(videos)
	}

	_ = h.eventPublisher.Publish(shared.NewCourseDeletedEvent(id, result.OrphanedCount, result.Cascaded, h.clock.Now()))

	log.Info("course deleted",
		logger.CourseID(id),
		logger.Bool("cascaded", result.Cascaded),
		logger.Int("deleted_videos", len(result.DeletedVideos)),
		logger.Int("orphaned_videos", result.OrphanedCount),
	)

	return result, nil
}
