package progress

import (
	"time"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECENT ACTIVITY
// ══════════════════════════════════════════════════════════════════════════════

// ActivityPolicy decides where an updated activity row ends up.
type ActivityPolicy int

const (
	// MoveToFront keeps RecentActivity most-recent-first.
	MoveToFront ActivityPolicy = iota

	// KeepPosition updates the row where it already is.
	KeepPosition
)

// RecordCourseProgress upserts the activity row of courseID, trims the list
// to MaxRecentActivity and recomputes OverallProgress. CompletedCourses is
// left as it is.
func (p *UserProgress) RecordCourseProgress(courseID, pct int, now time.Time, policy ActivityPolicy) {
	row := ActivityRow{CourseID: courseID, Progress: pct, LastAccessed: now}

	idx := -1
	for i, existing := range p.RecentActivity {
		if existing.CourseID == courseID {
			idx = i
			break
		}
	}

	switch {
	case idx < 0:
		p.RecentActivity = append([]ActivityRow{row}, p.RecentActivity...)
	case policy == KeepPosition:
		p.RecentActivity[idx] = row
	default:
		rest := append(p.RecentActivity[:idx:idx], p.RecentActivity[idx+1:]...)
		p.RecentActivity = append([]ActivityRow{row}, rest...)
	}

	if len(p.RecentActivity) > MaxRecentActivity {
		p.RecentActivity = p.RecentActivity[:MaxRecentActivity]
	}
	p.RecalculateOverall()
}

// RecalculateOverall sets OverallProgress to the rounded mean of the
// activity rows, 0 when there are none.
func (p *UserProgress) RecalculateOverall() {
	values := make([]int, len(p.RecentActivity))
	for i, row := range p.RecentActivity {
		values[i] = row.Progress
	}
	p.OverallProgress = shared.RoundedMean(values)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY TIME
// ══════════════════════════════════════════════════════════════════════════════

// AddStudyTime adds minutes to the total and to the weekly entry labelled
// day. It reports whether such an entry existed; when it does not, only the
// total changes.
func (p *UserProgress) AddStudyTime(minutes int, day string) bool {
	p.TotalStudyTime += minutes
	for i := range p.WeeklyProgress {
		if p.WeeklyProgress[i].Day == day {
			p.WeeklyProgress[i].Minutes += minutes
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// UnlockAchievement stamps a with now, prepends it and trims the list to
// MaxRecentAchievements. The counter keeps counting past the cap.
func (p *UserProgress) UnlockAchievement(a Achievement, now time.Time) Achievement {
	a.UnlockedAt = now
	p.RecentAchievements = append([]Achievement{a}, p.RecentAchievements...)
	if len(p.RecentAchievements) > MaxRecentAchievements {
		p.RecentAchievements = p.RecentAchievements[:MaxRecentAchievements]
	}
	p.Achievements++
	return a
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING STREAK
// ══════════════════════════════════════════════════════════════════════════════

// StreakOutcome is the state the streak ends up in after an evaluation.
type StreakOutcome int

const (
	// StreakSameDay - активность в тот же день, ничего не меняется.
	StreakSameDay StreakOutcome = iota

	// StreakContinued - прошли ровно сутки, серия продолжается.
	StreakContinued

	// StreakBroken - пропуск, серия начинается заново с 1.
	StreakBroken
)

// String returns a readable name.
func (o StreakOutcome) String() string {
	switch o {
	case StreakSameDay:
		return "same_day"
	case StreakContinued:
		return "continued"
	default:
		return "broken"
	}
}

// EvaluateStreak classifies the elapsed whole days between last and now.
// Days are floor((now-last)/24h), not calendar days.
func EvaluateStreak(last, now time.Time) StreakOutcome {
	switch timeutil.ElapsedDays(last, now) {
	case 0:
		return StreakSameDay
	case 1:
		return StreakContinued
	default:
		return StreakBroken
	}
}

// UpdateStreak applies EvaluateStreak. LastActivityDate moves to now unless
// the outcome is StreakSameDay.
func (p *UserProgress) UpdateStreak(now time.Time) StreakOutcome {
	outcome := EvaluateStreak(p.LastActivityDate, now)
	switch outcome {
	case StreakSameDay:
		return outcome
	case StreakContinued:
		p.LearningStreak++
	default:
		p.LearningStreak = 1
	}
	p.LastActivityDate = now
	return outcome
}
