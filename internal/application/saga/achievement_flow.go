// Package saga contains business processes that orchestrate several
// domain operations in a coordinated manner.
package saga

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT FLOW SAGA
// Flow: Load Progress → Check Milestones → Grant Achievements → Publish Events
//
// Вехи: серия учебных дней и суммарное время обучения.
// Веха выдаётся в момент её пересечения, если её нет среди
// MaxRecentAchievements последних достижений. Вытесненная из этого списка
// веха после сброса серии выдаётся снова.
// ══════════════════════════════════════════════════════════════════════════════

// Trigger names what caused an achievement check.
type Trigger string

const (
	TriggerStreak    Trigger = "streak"
	TriggerStudyTime Trigger = "study_time"
)

// AchievementCheckInput contains data needed to check for new achievements.
type AchievementCheckInput struct {
	UserID  int
	Trigger Trigger

	// PreviousValue and CurrentValue are streak days or study minutes,
	// depending on Trigger.
	PreviousValue int
	CurrentValue  int

	CorrelationID string
}

// Validate checks if the input is valid.
func (i AchievementCheckInput) Validate() error {
	if i.UserID <= 0 {
		return errors.New("achievement_flow: user ID is required")
	}
	if i.Trigger != TriggerStreak && i.Trigger != TriggerStudyTime {
		return fmt.Errorf("achievement_flow: unknown trigger %q", i.Trigger)
	}
	return nil
}

// AchievementFlowResult contains the result of achievement processing.
type AchievementFlowResult struct {
	UserID          int
	NewAchievements []progress.Achievement
	ProcessedAt     time.Time
}

// HasNewAchievements returns true if any achievements were unlocked.
func (r *AchievementFlowResult) HasNewAchievements() bool {
	return len(r.NewAchievements) > 0
}

// AchievementFlowStep represents a step in the achievement flow.
type AchievementFlowStep string

const (
	StepLoadProgress        AchievementFlowStep = "load_progress"
	StepCheckMilestones     AchievementFlowStep = "check_milestones"
	StepGrantAchievements   AchievementFlowStep = "grant_achievements"
	StepPublishAchievEvents AchievementFlowStep = "publish_events"
	StepAchievementComplete AchievementFlowStep = "complete"
)

// AchievementFlowState tracks the current state of the achievement flow saga.
type AchievementFlowState struct {
	CurrentStep     AchievementFlowStep
	Input           AchievementCheckInput
	Progress        *progress.UserProgress
	Candidates      []progress.Achievement
	NewAchievements []progress.Achievement
	StartedAt       time.Time
	FailedStep      AchievementFlowStep
	Error           error
}

// AchievementFlowConfig contains configuration for the achievement flow saga.
type AchievementFlowConfig struct {
	// StreakMilestones in consecutive days.
	StreakMilestones []int

	// StudyHourMilestones in hours of total study time.
	StudyHourMilestones []int
}

// DefaultAchievementFlowConfig returns default configuration.
func DefaultAchievementFlowConfig() AchievementFlowConfig {
	return AchievementFlowConfig{
		StreakMilestones:    []int{3, 7, 30, 100},
		StudyHourMilestones: []int{10, 50, 100},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT FLOW SAGA IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementFlowSaga unlocks milestone achievements on the progress aggregate.
type AchievementFlowSaga struct {
	progress progress.Aggregator
	eventBus shared.EventPublisher
	clock    timeutil.Clock
	log      *logger.Logger
	config   AchievementFlowConfig
}

// NewAchievementFlowSaga creates a new achievement flow saga.
func NewAchievementFlowSaga(
	agg progress.Aggregator,
	eventBus shared.EventPublisher,
	clock timeutil.Clock,
	log *logger.Logger,
	config AchievementFlowConfig,
) *AchievementFlowSaga {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AchievementFlowSaga{
		progress: agg,
		eventBus: eventBus,
		clock:    clock,
		log:      log.With(logger.Component("achievement_flow")),
		config:   config,
	}
}

// Execute runs the milestone check and grants what was crossed.
func (s *AchievementFlowSaga) Execute(ctx context.Context, input AchievementCheckInput) (*AchievementFlowResult, error) {
	state := &AchievementFlowState{
		CurrentStep: StepLoadProgress,
		Input:       input,
		StartedAt:   s.clock.Now(),
	}

	if err := input.Validate(); err != nil {
		state.FailedStep = StepLoadProgress
		state.Error = err
		return nil, s.wrapError(state, err)
	}

	// Step 1: Load progress
	if err := s.stepLoadProgress(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 2: Check milestones
	state.CurrentStep = StepCheckMilestones
	s.stepCheckMilestones(state)

	if len(state.Candidates) == 0 {
		return &AchievementFlowResult{
			UserID:          input.UserID,
			NewAchievements: []progress.Achievement{},
			ProcessedAt:     s.clock.Now(),
		}, nil
	}

	// Step 3: Grant achievements
	state.CurrentStep = StepGrantAchievements
	if err := s.stepGrantAchievements(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 4: Publish domain events
	state.CurrentStep = StepPublishAchievEvents
	s.stepPublishEvents(state)

	state.CurrentStep = StepAchievementComplete

	logger.FromContext(ctx, s.log).Info("milestone achievements granted",
		logger.UserID(input.UserID),
		logger.String("trigger", string(input.Trigger)),
		logger.Int("granted", len(state.NewAchievements)),
	)

	return &AchievementFlowResult{
		UserID:          input.UserID,
		NewAchievements: state.NewAchievements,
		ProcessedAt:     s.clock.Now(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SAGA STEPS
// ══════════════════════════════════════════════════════════════════════════════

func (s *AchievementFlowSaga) stepLoadProgress(ctx context.Context, state *AchievementFlowState) error {
	p, err := s.progress.GetUserProgress(ctx, state.Input.UserID)
	if err != nil {
		state.FailedStep = StepLoadProgress
		state.Error = fmt.Errorf("failed to load progress: %w", err)
		return state.Error
	}
	state.Progress = p
	return nil
}

// stepCheckMilestones collects every milestone in (previous, current].
// Milestones already among the recent achievements are skipped.
func (s *AchievementFlowSaga) stepCheckMilestones(state *AchievementFlowState) {
	in := state.Input

	var candidates []progress.Achievement
	switch in.Trigger {
	case TriggerStreak:
		for _, days := range s.config.StreakMilestones {
			if crossed(in.PreviousValue, in.CurrentValue, days) {
				candidates = append(candidates, StreakAchievement(days))
			}
		}
	case TriggerStudyTime:
		for _, hours := range s.config.StudyHourMilestones {
			if crossed(in.PreviousValue, in.CurrentValue, hours*60) {
				candidates = append(candidates, StudyTimeAchievement(hours))
			}
		}
	}

	for _, c := range candidates {
		if !hasAchievement(state.Progress, c.ID) {
			state.Candidates = append(state.Candidates, c)
		}
	}
}

func (s *AchievementFlowSaga) stepGrantAchievements(ctx context.Context, state *AchievementFlowState) error {
	for _, candidate := range state.Candidates {
		p, err := s.progress.UnlockAchievement(ctx, state.Input.UserID, candidate)
		if err != nil {
			state.FailedStep = StepGrantAchievements
			state.Error = fmt.Errorf("failed to unlock %s: %w", candidate.ID, err)
			return state.Error
		}
		state.Progress = p
		if len(p.RecentAchievements) > 0 {
			state.NewAchievements = append(state.NewAchievements, p.RecentAchievements[0])
		}
	}
	return nil
}

func (s *AchievementFlowSaga) stepPublishEvents(state *AchievementFlowState) {
	if s.eventBus == nil {
		return
	}
	for _, a := range state.NewAchievements {
		event := shared.NewAchievementUnlockedEvent(state.Input.UserID, a.ID, a.Title, a.UnlockedAt)
		event.BaseEvent = event.BaseEvent.WithCorrelationID(state.Input.CorrelationID)
		_ = s.eventBus.Publish(event)
	}
}

func (s *AchievementFlowSaga) wrapError(state *AchievementFlowState, err error) error {
	s.log.Warn("achievement flow failed",
		logger.UserID(state.Input.UserID),
		logger.String("step", string(state.FailedStep)),
		logger.Err(err),
	)
	return fmt.Errorf("achievement_flow: step %s: %w", state.FailedStep, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

// StreakAchievement describes the badge for a streak of days.
func StreakAchievement(days int) progress.Achievement {
	return progress.Achievement{
		ID:          fmt.Sprintf("streak-%d", days),
		Title:       fmt.Sprintf("%d일 연속 학습", days),
		Description: fmt.Sprintf("%d일 동안 매일 학습했습니다", days),
		Icon:        "Flame",
	}
}

// StudyTimeAchievement describes the badge for total study hours.
func StudyTimeAchievement(hours int) progress.Achievement {
	return progress.Achievement{
		ID:          fmt.Sprintf("study-%dh", hours),
		Title:       fmt.Sprintf("누적 %d시간 학습", hours),
		Description: fmt.Sprintf("총 학습 시간이 %d시간을 넘었습니다", hours),
		Icon:        "Clock",
	}
}

func crossed(previous, current, milestone int) bool {
	return previous < milestone && current >= milestone
}

// hasAchievement looks only at RecentAchievements.
func hasAchievement(p *progress.UserProgress, id string) bool {
	return slices.ContainsFunc(p.RecentAchievements, func(a progress.Achievement) bool {
		return a.ID == id
	})
}
