package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

func courseIDs(rows []ActivityRow) []int {
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.CourseID
	}
	return ids
}

func TestRecordCourseProgress_InsertsAtFront(t *testing.T) {
	p := &UserProgress{RecentActivity: []ActivityRow{{CourseID: 1, Progress: 80}}}

	p.RecordCourseProgress(2, 60, now, MoveToFront)

	assert.Equal(t, []int{2, 1}, courseIDs(p.RecentActivity))
	assert.Equal(t, 70, p.OverallProgress)
	assert.Equal(t, now, p.RecentActivity[0].LastAccessed)
}

func TestRecordCourseProgress_SecondValueWins(t *testing.T) {
	p := &UserProgress{}

	p.RecordCourseProgress(5, 10, now, MoveToFront)
	p.RecordCourseProgress(5, 40, now.Add(time.Minute), MoveToFront)

	require.Len(t, p.RecentActivity, 1)
	assert.Equal(t, 40, p.RecentActivity[0].Progress)
	assert.Equal(t, 40, p.OverallProgress)
}

func TestRecordCourseProgress_Policies(t *testing.T) {
	seed := func() *UserProgress {
		return &UserProgress{RecentActivity: []ActivityRow{
			{CourseID: 1, Progress: 10},
			{CourseID: 2, Progress: 20},
			{CourseID: 3, Progress: 30},
		}}
	}

	moved := seed()
	moved.RecordCourseProgress(3, 90, now, MoveToFront)
	assert.Equal(t, []int{3, 1, 2}, courseIDs(moved.RecentActivity))

	kept := seed()
	kept.RecordCourseProgress(3, 90, now, KeepPosition)
	assert.Equal(t, []int{1, 2, 3}, courseIDs(kept.RecentActivity))
	assert.Equal(t, 90, kept.RecentActivity[2].Progress)
}

func TestRecordCourseProgress_CapsAtTen(t *testing.T) {
	p := &UserProgress{}
	for id := 1; id <= MaxRecentActivity+2; id++ {
		p.RecordCourseProgress(id, id, now, MoveToFront)
	}

	require.Len(t, p.RecentActivity, MaxRecentActivity)
	assert.Equal(t, MaxRecentActivity+2, p.RecentActivity[0].CourseID)
	_, stillThere := p.ActivityFor(1)
	assert.False(t, stillThere)
}

func TestRecordCourseProgress_LeavesCompletedCoursesAlone(t *testing.T) {
	p := &UserProgress{CompletedCourses: 2}

	p.RecordCourseProgress(1, 100, now, MoveToFront)
	for id := 2; id <= MaxRecentActivity+1; id++ {
		p.RecordCourseProgress(id, 10, now, MoveToFront)
	}
	_, stillThere := p.ActivityFor(1)
	require.False(t, stillThere)

	p.RecordCourseProgress(1, 100, now, MoveToFront)
	assert.Equal(t, 2, p.CompletedCourses)
	assert.Equal(t, 1, p.RecentActivity[0].CourseID)
}

func TestAddStudyTime(t *testing.T) {
	p := &UserProgress{TotalStudyTime: 100, WeeklyProgress: NewWeek()}

	assert.True(t, p.AddStudyTime(30, "수"))
	assert.Equal(t, 130, p.TotalStudyTime)
	assert.Equal(t, 30, p.WeeklyProgress[2].Minutes)

	assert.False(t, p.AddStudyTime(15, "Wed"))
	assert.Equal(t, 145, p.TotalStudyTime)
	assert.Equal(t, 30, p.WeeklyTotal())
}

func TestUnlockAchievement(t *testing.T) {
	p := &UserProgress{}
	for i := 0; i < MaxRecentAchievements+1; i++ {
		p.UnlockAchievement(Achievement{Title: string(rune('A' + i))}, now.Add(time.Duration(i)*time.Hour))
	}

	require.Len(t, p.RecentAchievements, MaxRecentAchievements)
	assert.Equal(t, "F", p.RecentAchievements[0].Title)
	assert.Equal(t, now.Add(5*time.Hour), p.RecentAchievements[0].UnlockedAt)
	assert.Equal(t, MaxRecentAchievements+1, p.Achievements)
}

func TestEvaluateStreak(t *testing.T) {
	assert.Equal(t, StreakSameDay, EvaluateStreak(now.Add(-3*time.Hour), now))
	assert.Equal(t, StreakContinued, EvaluateStreak(now.Add(-24*time.Hour), now))
	assert.Equal(t, StreakContinued, EvaluateStreak(now.Add(-47*time.Hour), now))
	assert.Equal(t, StreakBroken, EvaluateStreak(now.Add(-72*time.Hour), now))
	assert.Equal(t, StreakBroken, EvaluateStreak(time.Time{}, now))
}

func TestUpdateStreak(t *testing.T) {
	today := now.Add(-time.Hour)
	p := &UserProgress{LearningStreak: 4, LastActivityDate: today}
	assert.Equal(t, StreakSameDay, p.UpdateStreak(now))
	assert.Equal(t, 4, p.LearningStreak)
	assert.Equal(t, today, p.LastActivityDate)

	p.LastActivityDate = now.Add(-24 * time.Hour)
	assert.Equal(t, StreakContinued, p.UpdateStreak(now))
	assert.Equal(t, 5, p.LearningStreak)
	assert.Equal(t, now, p.LastActivityDate)

	p.LastActivityDate = now.Add(-3 * 24 * time.Hour)
	assert.Equal(t, StreakBroken, p.UpdateStreak(now))
	assert.Equal(t, 1, p.LearningStreak)
}

func TestClone_IsDeep(t *testing.T) {
	p := &UserProgress{
		RecentActivity:     []ActivityRow{{CourseID: 1}},
		WeeklyProgress:     NewWeek(),
		RecentAchievements: []Achievement{{Title: "x"}},
	}
	cp := p.Clone()
	cp.RecentActivity[0].Progress = 99
	cp.WeeklyProgress[0].Minutes = 99
	cp.RecentAchievements[0].Title = "y"

	assert.Equal(t, 0, p.RecentActivity[0].Progress)
	assert.Equal(t, 0, p.WeeklyProgress[0].Minutes)
	assert.Equal(t, "x", p.RecentAchievements[0].Title)
}
