// Package progress содержит агрегат UserProgress: недавнюю активность по
// курсам, недельное время обучения, достижения и серию учебных дней.
//
// Все правила изменения агрегата живут здесь, в методах UserProgress.
// Хранилище в infrastructure только сериализует доступ и возвращает копии.
package progress

import (
	"time"

	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

const (
	// MaxRecentActivity - сколько строк активности хранится.
	MaxRecentActivity = 10

	// MaxRecentAchievements - сколько последних достижений хранится.
	MaxRecentAchievements = 5
)

// ActivityRow is the latest recorded progress on one course.
type ActivityRow struct {
	CourseID     int       `json:"courseId"`
	Progress     int       `json:"progress"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// WeeklyEntry holds the minutes studied on one weekday.
type WeeklyEntry struct {
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
}

// Achievement is an unlocked badge.
type Achievement struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// UserProgress is the learning-progress aggregate of one user.
type UserProgress struct {
	UserID             int           `json:"userId"`
	OverallProgress    int           `json:"overallProgress"`
	CompletedCourses   int           `json:"completedCourses"`
	TotalStudyTime     int           `json:"totalStudyTime"`
	Achievements       int           `json:"achievements"`
	RecentActivity     []ActivityRow `json:"recentActivity"`
	WeeklyProgress     []WeeklyEntry `json:"weeklyProgress"`
	RecentAchievements []Achievement `json:"recentAchievements"`
	LearningStreak     int           `json:"learningStreak"`
	LastActivityDate   time.Time     `json:"lastActivityDate"`
}

// NewWeek returns seven zeroed entries labelled Monday to Sunday.
func NewWeek() []WeeklyEntry {
	week := make([]WeeklyEntry, len(timeutil.WeekdayLabels))
	for i, label := range timeutil.WeekdayLabels {
		week[i] = WeeklyEntry{Day: label}
	}
	return week
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	cp := *p
	cp.RecentActivity = append([]ActivityRow(nil), p.RecentActivity...)
	cp.WeeklyProgress = append([]WeeklyEntry(nil), p.WeeklyProgress...)
	cp.RecentAchievements = append([]Achievement(nil), p.RecentAchievements...)
	return &cp
}

// ActivityFor returns the activity row of a course, if any.
func (p *UserProgress) ActivityFor(courseID int) (ActivityRow, bool) {
	for _, row := range p.RecentActivity {
		if row.CourseID == courseID {
			return row, true
		}
	}
	return ActivityRow{}, false
}

// WeeklyTotal sums the minutes of the week.
func (p *UserProgress) WeeklyTotal() int {
	total := 0
	for _, e := range p.WeeklyProgress {
		total += e.Minutes
	}
	return total
}
