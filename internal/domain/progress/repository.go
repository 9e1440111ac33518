package progress

import "context"

// Aggregator owns the UserProgress aggregate. userID is accepted on every
// call; a single-tenant implementation may serve one shared aggregate.
// Every method returns a deep copy of the aggregate after the change.
type Aggregator interface {
	// GetUserProgress returns the current aggregate.
	GetUserProgress(ctx context.Context, userID int) (*UserProgress, error)

	// UpdateCourseProgress records pct for courseID in the recent activity.
	UpdateCourseProgress(ctx context.Context, userID, courseID, pct int) (*UserProgress, error)

	// AddStudyTime adds minutes to the total and to today's weekly entry.
	AddStudyTime(ctx context.Context, userID, minutes int) (*UserProgress, error)

	// UnlockAchievement prepends a freshly stamped achievement.
	UnlockAchievement(ctx context.Context, userID int, achievement Achievement) (*UserProgress, error)

	// UpdateLearningStreak re-evaluates the streak against the current time.
	UpdateLearningStreak(ctx context.Context, userID int) (*UserProgress, error)
}
