package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

var _ progress.Aggregator = (*ProgressAggregator)(nil)

// ProgressAggregator implements progress.Aggregator over one shared
// UserProgress. The userID argument is accepted but not used to partition.
type ProgressAggregator struct {
	mu       sync.RWMutex
	progress *progress.UserProgress
	policy   progress.ActivityPolicy

	latency  latency.Simulator
	clock    timeutil.Clock
	location *time.Location
	log      *logger.Logger
}

// NewProgressAggregator creates an aggregator seeded with a copy of seed.
// A nil seed or a seed without weekly entries starts from an empty week.
func NewProgressAggregator(seed *progress.UserProgress, policy progress.ActivityPolicy, opts Options) *ProgressAggregator {
	opts = opts.withDefaults()

	p := seed.Clone()
	if p == nil {
		p = &progress.UserProgress{}
	}
	if len(p.WeeklyProgress) == 0 {
		p.WeeklyProgress = progress.NewWeek()
	}

	return &ProgressAggregator{
		progress: p,
		policy:   policy,
		latency:  opts.Latency,
		clock:    opts.Clock,
		location: opts.Location,
		log:      opts.Logger.With(logger.Component("progress_aggregator")),
	}
}

// GetUserProgress returns a copy of the aggregate.
func (a *ProgressAggregator) GetUserProgress(ctx context.Context, userID int) (*progress.UserProgress, error) {
	a.latency.Wait(ctx, latency.OpProgressGet)

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress.Clone(), nil
}

// UpdateCourseProgress records pct for courseID.
func (a *ProgressAggregator) UpdateCourseProgress(ctx context.Context, userID, courseID, pct int) (*progress.UserProgress, error) {
	a.latency.Wait(ctx, latency.OpProgressCourse)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.progress.RecordCourseProgress(courseID, pct, a.clock.Now(), a.policy)

	logger.FromContext(ctx, a.log).Debug("course progress recorded",
		logger.UserID(userID),
		logger.CourseID(courseID),
		logger.Int("progress", pct),
		logger.Int("overall_progress", a.progress.OverallProgress),
	)
	return a.progress.Clone(), nil
}

// AddStudyTime adds minutes to the total and to today's weekly entry.
func (a *ProgressAggregator) AddStudyTime(ctx context.Context, userID, minutes int) (*progress.UserProgress, error) {
	a.latency.Wait(ctx, latency.OpProgressStudy)

	a.mu.Lock()
	defer a.mu.Unlock()

	day := timeutil.WeekdayLabel(a.clock.Now(), a.location)
	if !a.progress.AddStudyTime(minutes, day) {
		logger.FromContext(ctx, a.log).Warn("no weekly entry for today",
			logger.UserID(userID),
			logger.String("day", day),
		)
	}
	return a.progress.Clone(), nil
}

// UnlockAchievement prepends a freshly stamped achievement. An empty ID is
// replaced with a random one.
func (a *ProgressAggregator) UnlockAchievement(ctx context.Context, userID int, achievement progress.Achievement) (*progress.UserProgress, error) {
	a.latency.Wait(ctx, latency.OpProgressUnlock)

	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	unlocked := a.progress.UnlockAchievement(achievement, a.clock.Now())

	logger.FromContext(ctx, a.log).Debug("achievement unlocked",
		logger.UserID(userID),
		logger.String("achievement_id", unlocked.ID),
		logger.String("title", unlocked.Title),
	)
	return a.progress.Clone(), nil
}

// UpdateLearningStreak re-evaluates the streak against the clock.
func (a *ProgressAggregator) UpdateLearningStreak(ctx context.Context, userID int) (*progress.UserProgress, error) {
	a.latency.Wait(ctx, latency.OpProgressStreak)

	a.mu.Lock()
	defer a.mu.Unlock()

	outcome := a.progress.UpdateStreak(a.clock.Now())

	logger.FromContext(ctx, a.log).Debug("learning streak evaluated",
		logger.UserID(userID),
		logger.String("outcome", outcome.String()),
		logger.Int("streak", a.progress.LearningStreak),
	)
	return a.progress.Clone(), nil
}
