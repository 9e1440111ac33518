package eventhandler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apper-apps/skillup-plus-harbor/internal/application/saga"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROGRESS MILESTONE HANDLER
// Запускает AchievementFlowSaga, когда растёт серия дней или время обучения.
// Сброс серии вехой не считается.
// ═══════════════════════════════════════════════════════════════════════════

// OnProgressMilestoneHandler feeds progress events into the achievement saga.
type OnProgressMilestoneHandler struct {
	saga *saga.AchievementFlowSaga
	log  *logger.Logger
}

// NewOnProgressMilestoneHandler creates a new OnProgressMilestoneHandler.
func NewOnProgressMilestoneHandler(flow *saga.AchievementFlowSaga, log *logger.Logger) *OnProgressMilestoneHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &OnProgressMilestoneHandler{
		saga: flow,
		log:  log.With(logger.Component("on_progress_milestone")),
	}
}

// EventTypes lists the events this handler reacts to.
func (h *OnProgressMilestoneHandler) EventTypes() []shared.EventType {
	return []shared.EventType{shared.EventStreakUpdated, shared.EventStudyTimeAdded}
}

// Register subscribes the handler to its events.
func (h *OnProgressMilestoneHandler) Register(sub shared.EventSubscriber) error {
	for _, t := range h.EventTypes() {
		if err := sub.Subscribe(t, h.Handle); err != nil {
			return fmt.Errorf("on_progress_milestone: subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle обрабатывает событие прогресса.
func (h *OnProgressMilestoneHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	userID, err := strconv.Atoi(event.AggregateID())
	if err != nil {
		return fmt.Errorf("on_progress_milestone: bad aggregate id %q: %w", event.AggregateID(), err)
	}

	var input saga.AchievementCheckInput
	switch e := event.(type) {
	case shared.StreakEvent:
		input = saga.AchievementCheckInput{
			UserID:        userID,
			Trigger:       saga.TriggerStreak,
			PreviousValue: e.PreviousStreak,
			CurrentValue:  e.Streak,
			CorrelationID: e.CorrelationID,
		}
	case shared.StudyTimeAddedEvent:
		input = saga.AchievementCheckInput{
			UserID:        userID,
			Trigger:       saga.TriggerStudyTime,
			PreviousValue: e.TotalStudyTime - e.Minutes,
			CurrentValue:  e.TotalStudyTime,
			CorrelationID: e.CorrelationID,
		}
	default:
		h.log.Warn("unexpected event", logger.EventType(string(event.EventType())))
		return nil
	}

	if _, err := h.saga.Execute(ctx, input); err != nil {
		return fmt.Errorf("on_progress_milestone: %w", err)
	}
	return nil
}
