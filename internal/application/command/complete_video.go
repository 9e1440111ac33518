package command

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/config"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE VIDEO COMMAND
// Отмечает видео просмотренным и переносит это в прогресс пользователя:
// время обучения, серию дней, процент по курсу и достижение за курс.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteVideoCommand identifies the watched video.
type CompleteVideoCommand struct {
	UserID  int
	VideoID string

	// CorrelationID for tracing.
	CorrelationID string
}

// CompleteVideoResult contains the state after the command.
type CompleteVideoResult struct {
	Video            *video.Video
	AlreadyCompleted bool
	CourseProgress   int
	CourseCompleted  bool
	Streak           progress.StreakOutcome
	Progress         *progress.UserProgress
}

// CompleteVideoHandler handles the CompleteVideoCommand.
type CompleteVideoHandler struct {
	courses        course.Repository
	videos         video.Repository
	progress       progress.Aggregator
	eventPublisher shared.EventPublisher
	features       FeatureChecker
	clock          timeutil.Clock
	log            *logger.Logger
}

// NewCompleteVideoHandler creates a new CompleteVideoHandler. features may be nil.
func NewCompleteVideoHandler(
	courses course.Repository,
	videos video.Repository,
	agg progress.Aggregator,
	eventPublisher shared.EventPublisher,
	features FeatureChecker,
	clock timeutil.Clock,
	log *logger.Logger,
) *CompleteVideoHandler {
	if features == nil {
		features = noFeatures{}
	}
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &CompleteVideoHandler{
		courses:        courses,
		videos:         videos,
		progress:       agg,
		eventPublisher: eventPublisher,
		features:       features,
		clock:          clock,
		log:            log.With(logger.Component("complete_video")),
	}
}

// Handle executes the complete video command.
// Study time is only added the first time a video is completed.
func (h *CompleteVideoHandler) Handle(ctx context.Context, cmd CompleteVideoCommand) (*CompleteVideoResult, error) {
	id, err := shared.ParseID(shared.DomainVideo, cmd.VideoID)
	if err != nil {
		return nil, fmt.Errorf("complete_video: %w", err)
	}

	log := logger.FromContext(ctx, h.log)
	if cmd.CorrelationID != "" {
		log = log.WithCorrelationID(cmd.CorrelationID)
	}

	current, err := h.videos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("complete_video: failed to get video: %w", err)
	}

	v, err := h.videos.MarkCompleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("complete_video: failed to mark video: %w", err)
	}

	before, err := h.progress.GetUserProgress(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("complete_video: failed to get progress: %w", err)
	}

	result := &CompleteVideoResult{
		Video:            v,
		AlreadyCompleted: current.Completed,
	}
	var events []shared.Event
	now := h.clock.Now()

	events = append(events, shared.NewVideoEvent(shared.EventVideoCompleted, v.CourseID, v.ID, v.Duration, v.Order, now))

	// ─────────────────────────────────────────────────────────────────────────
	// Study time and streak
	// ─────────────────────────────────────────────────────────────────────────

	after := before
	if !result.AlreadyCompleted && v.Duration > 0 {
		after, err = h.progress.AddStudyTime(ctx, cmd.UserID, v.Duration)
		if err != nil {
			return nil, fmt.Errorf("complete_video: failed to add study time: %w", err)
		}
		events = append(events, shared.NewStudyTimeAddedEvent(cmd.UserID, v.Duration, after.TotalStudyTime, now))
	}

	after, err = h.progress.UpdateLearningStreak(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("complete_video: failed to update streak: %w", err)
	}
	result.Streak = progress.EvaluateStreak(before.LastActivityDate, after.LastActivityDate)
	switch {
	case result.Streak == progress.StreakSameDay:
	case result.Streak == progress.StreakBroken && before.LearningStreak > 0:
		events = append(events, shared.NewStreakEvent(shared.EventStreakBroken, cmd.UserID, before.LearningStreak, after.LearningStreak, now))
	default:
		events = append(events, shared.NewStreakEvent(shared.EventStreakUpdated, cmd.UserID, before.LearningStreak, after.LearningStreak, now))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Course progress
	// ─────────────────────────────────────────────────────────────────────────

	c, err := h.courses.GetByID(ctx, v.CourseID)
	switch {
	case shared.IsNotFound(err):
		log.Warn("video belongs to a missing course, progress not recorded",
			logger.VideoID(v.ID),
			logger.CourseID(v.CourseID),
		)
	case err != nil:
		return nil, fmt.Errorf("complete_video: failed to get course: %w", err)
	default:
		curriculum, err := h.videos.GetByCourseID(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("complete_video: failed to list videos: %w", err)
		}
		pct := shared.CompletionPercentage(video.CompletedCount(curriculum), len(curriculum)).Int()

		recorded, err := h.progress.UpdateCourseProgress(ctx, cmd.UserID, c.ID, pct)
		if err != nil {
			return nil, fmt.Errorf("complete_video: failed to record course progress: %w", err)
		}
		after = recorded
		result.CourseProgress = pct
		result.CourseCompleted = finishedCourse(before, c.ID, pct, result.AlreadyCompleted)
		events = append(events, shared.NewCourseProgressUpdatedEvent(cmd.UserID, c.ID, pct, recorded.OverallProgress, now))

		if result.CourseCompleted && h.features.IsEnabled(config.FeatureCourseCompletionAchievement) {
			unlocked, err := h.progress.UnlockAchievement(ctx, cmd.UserID, progress.Achievement{
				Title:       c.Title + " 완주",
				Description: "강의의 모든 영상을 완료했습니다",
				Icon:        "Trophy",
			})
			if err != nil {
				return nil, fmt.Errorf("complete_video: failed to unlock achievement: %w", err)
			}
			after = unlocked
			if len(unlocked.RecentAchievements) > 0 {
				a := unlocked.RecentAchievements[0]
				events = append(events, shared.NewAchievementUnlockedEvent(cmd.UserID, a.ID, a.Title, now))
			}
		}
	}

	result.Progress = after

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	log.Info("video completed",
		logger.UserID(cmd.UserID),
		logger.VideoID(v.ID),
		logger.CourseID(v.CourseID),
		logger.Bool("already_completed", result.AlreadyCompleted),
		logger.Int("course_progress", result.CourseProgress),
		logger.String("streak", result.Streak.String()),
	)

	return result, nil
}

// finishedCourse reports whether this completion is the one that took the
// course to 100%. Re-watching a video or recording an already finished
// course again does not count.
func finishedCourse(before *progress.UserProgress, courseID, pct int, alreadyCompleted bool) bool {
	if pct < 100 || alreadyCompleted {
		return false
	}
	prev, ok := before.ActivityFor(courseID)
	return !ok || prev.Progress < 100
}
