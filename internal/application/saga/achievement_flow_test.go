package saga

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/memory"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newSaga(t *testing.T, seed *progress.UserProgress) (*AchievementFlowSaga, *memory.ProgressAggregator, *capturePublisher) {
	t.Helper()
	clock := timeutil.NewFixedClock(time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC))
	agg := memory.NewProgressAggregator(seed, progress.MoveToFront, memory.Options{Clock: clock})
	pub := &capturePublisher{}
	return NewAchievementFlowSaga(agg, pub, clock, nil, DefaultAchievementFlowConfig()), agg, pub
}

func TestAchievementFlow_StreakMilestone(t *testing.T) {
	s, agg, pub := newSaga(t, &progress.UserProgress{UserID: 1, LearningStreak: 7})

	res, err := s.Execute(context.Background(), AchievementCheckInput{
		UserID:        1,
		Trigger:       TriggerStreak,
		PreviousValue: 6,
		CurrentValue:  7,
		CorrelationID: "c-7",
	})
	require.NoError(t, err)
	require.True(t, res.HasNewAchievements())
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "streak-7", res.NewAchievements[0].ID)
	assert.Equal(t, "7일 연속 학습", res.NewAchievements[0].Title)

	p, err := agg.GetUserProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Achievements)

	require.Len(t, pub.events, 1)
	unlocked := pub.events[0].(shared.AchievementUnlockedEvent)
	assert.Equal(t, "streak-7", unlocked.AchievementID)
	assert.Equal(t, "c-7", unlocked.CorrelationID)
}

func TestAchievementFlow_NotGrantedTwice(t *testing.T) {
	s, _, pub := newSaga(t, &progress.UserProgress{
		UserID:             1,
		RecentAchievements: []progress.Achievement{StreakAchievement(3)},
	})

	res, err := s.Execute(context.Background(), AchievementCheckInput{
		UserID: 1, Trigger: TriggerStreak, PreviousValue: 2, CurrentValue: 3,
	})
	require.NoError(t, err)
	assert.False(t, res.HasNewAchievements())
	assert.Empty(t, pub.events)
}

func TestAchievementFlow_RegrantedOnceOutOfRecentList(t *testing.T) {
	recent := []progress.Achievement{StreakAchievement(3)}
	for i := 0; i < progress.MaxRecentAchievements; i++ {
		recent = append([]progress.Achievement{StudyTimeAchievement(100 + i)}, recent...)
	}
	recent = recent[:progress.MaxRecentAchievements]
	s, agg, pub := newSaga(t, &progress.UserProgress{
		UserID:             1,
		Achievements:       6,
		RecentAchievements: recent,
	})

	// The streak was reset and reaches 3 days again.
	res, err := s.Execute(context.Background(), AchievementCheckInput{
		UserID: 1, Trigger: TriggerStreak, PreviousValue: 2, CurrentValue: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "streak-3", res.NewAchievements[0].ID)
	assert.Len(t, pub.events, 1)

	p, err := agg.GetUserProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Achievements)
}

func TestAchievementFlow_StudyTimeCrossesSeveralMilestones(t *testing.T) {
	s, _, _ := newSaga(t, nil)

	res, err := s.Execute(context.Background(), AchievementCheckInput{
		UserID:        1,
		Trigger:       TriggerStudyTime,
		PreviousValue: 590,
		CurrentValue:  3000,
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.NewAchievements))
	for _, a := range res.NewAchievements {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"study-10h", "study-50h"}, ids)
}

func TestAchievementFlow_NoMilestone(t *testing.T) {
	s, _, pub := newSaga(t, nil)

	res, err := s.Execute(context.Background(), AchievementCheckInput{
		UserID: 1, Trigger: TriggerStreak, PreviousValue: 3, CurrentValue: 4,
	})
	require.NoError(t, err)
	assert.Empty(t, res.NewAchievements)
	assert.Empty(t, pub.events)
}

func TestAchievementFlow_InvalidInput(t *testing.T) {
	s, _, _ := newSaga(t, nil)

	_, err := s.Execute(context.Background(), AchievementCheckInput{UserID: 0, Trigger: TriggerStreak})
	assert.Error(t, err)

	_, err = s.Execute(context.Background(), AchievementCheckInput{UserID: 1, Trigger: "xp"})
	assert.Error(t, err)
}
