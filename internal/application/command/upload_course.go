package command

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPLOAD COURSE COMMAND
// Creates a course and then its curriculum, one video at a time, in the
// order the videos were listed.
// ══════════════════════════════════════════════════════════════════════════════

// UploadVideo is one entry of the uploaded curriculum.
type UploadVideo struct {
	Title    string `validate:"notblank"`
	VideoURL string `validate:"notblank"`
	Duration int    `validate:"gte=0"` // minutes
}

// UploadCourseCommand contains the data of a new course.
type UploadCourseCommand struct {
	Title        string        `validate:"notblank"`
	Description  string        `validate:"notblank"`
	ThumbnailURL string        `validate:"omitempty,url"`
	Type         course.Type   `validate:"required,oneof=membership master"`
	Videos       []UploadVideo `validate:"min=1,dive"`

	// CorrelationID for tracing.
	CorrelationID string
}

// UploadCourseResult contains the stored course and its videos.
type UploadCourseResult struct {
	Course *course.Course
	Videos []*video.Video
}

// UploadCourseHandler handles the UploadCourseCommand.
type UploadCourseHandler struct {
	courses        course.Repository
	videos         video.Repository
	eventPublisher shared.EventPublisher
	clock          timeutil.Clock
	log            *logger.Logger
}

// NewUploadCourseHandler creates a new UploadCourseHandler.
func NewUploadCourseHandler(
	courses course.Repository,
	videos video.Repository,
	eventPublisher shared.EventPublisher,
	clock timeutil.Clock,
	log *logger.Logger,
) *UploadCourseHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &UploadCourseHandler{
		courses:        courses,
		videos:         videos,
		eventPublisher: eventPublisher,
		clock:          clock,
		log:            log.With(logger.Component("upload_course")),
	}
}

// Handle executes the upload course command.
// Videos already created stay in place when a later one fails.
func (h *UploadCourseHandler) Handle(ctx context.Context, cmd UploadCourseCommand) (*UploadCourseResult, error) {
	if err := validateStruct(shared.DomainCourse, "Upload", cmd); err != nil {
		return nil, fmt.Errorf("upload_course: validation failed: %w", err)
	}

	log := logger.FromContext(ctx, h.log)
	if cmd.CorrelationID != "" {
		log = log.WithCorrelationID(cmd.CorrelationID)
	}

	c, err := h.courses.Create(ctx, course.Draft{
		Title:        cmd.Title,
		Description:  cmd.Description,
		ThumbnailURL: cmd.ThumbnailURL,
		Type:         cmd.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("upload_course: failed to create course: %w", err)
	}

	result := &UploadCourseResult{
		Course: c,
		Videos: make([]*video.Video, 0, len(cmd.Videos)),
	}
	events := make([]shared.Event, 0, len(cmd.Videos)+1)

	for i, uv := range cmd.Videos {
		v, err := h.videos.Create(ctx, video.Draft{
			CourseID: c.ID,
			Title:    uv.Title,
			VideoURL: uv.VideoURL,
			Duration: uv.Duration,
			Order:    i + 1,
		})
		if err != nil {
			return nil, fmt.Errorf("upload_course: failed to create video %d of course %d: %w", i+1, c.ID, err)
		}
		result.Videos = append(result.Videos, v)
		events = append(events, shared.NewVideoEvent(shared.EventVideoCreated, c.ID, v.ID, v.Duration, v.Order, v.CreatedAt))
	}

	created := shared.NewCourseCreatedEvent(c.ID, c.Title, c.Type.String(), len(result.Videos), h.clock.Now())
	created.BaseEvent = created.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	events = append(events, created)

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	log.Info("course uploaded",
		logger.CourseID(c.ID),
		logger.String("type", c.Type.String()),
		logger.Int("videos", len(result.Videos)),
		logger.Int("total_duration", video.TotalDuration(result.Videos)),
	)

	return result, nil
}
