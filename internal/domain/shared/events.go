package shared

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Commands publish them after a store call succeeded.
const (
	// Catalog events
	EventCourseCreated    EventType = "course.created"
	EventCourseDeleted    EventType = "course.deleted"
	EventVideoCreated     EventType = "video.created"
	EventVideoDeleted     EventType = "video.deleted"
	EventVideoCompleted   EventType = "video.completed"
	EventArticlePublished EventType = "article.published"
	EventArticleUpdated   EventType = "article.updated"
	EventArticleDeleted   EventType = "article.deleted"

	// Progress events
	EventCourseProgressUpdated EventType = "progress.course_updated"
	EventStudyTimeAdded        EventType = "progress.study_time_added"
	EventAchievementUnlocked   EventType = "progress.achievement_unlocked"
	EventStreakUpdated         EventType = "progress.streak_updated"
	EventStreakBroken          EventType = "progress.streak_broken"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// EventID returns the unique id of this event instance.
func (e BaseEvent) EventID() string {
	return e.ID
}

// NewBaseEvent creates a new base event stamped at the given time.
func NewBaseEvent(eventType EventType, aggregateID int, at time.Time) BaseEvent {
	return BaseEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   at.UTC(),
		AggregateId: strconv.Itoa(aggregateID),
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Catalog Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseCreatedEvent is emitted after a course (and its curriculum) was uploaded.
type CourseCreatedEvent struct {
	BaseEvent
	Title      string `json:"title"`
	CourseType string `json:"course_type"`
	VideoCount int    `json:"video_count"`
}

// Payload implements Event interface.
func (e CourseCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"title":       e.Title,
		"course_type": e.CourseType,
		"video_count": e.VideoCount,
	}
}

// NewCourseCreatedEvent creates a new CourseCreatedEvent.
func NewCourseCreatedEvent(courseID int, title, courseType string, videoCount int, at time.Time) CourseCreatedEvent {
	return CourseCreatedEvent{
		BaseEvent:  NewBaseEvent(EventCourseCreated, courseID, at),
		Title:      title,
		CourseType: courseType,
		VideoCount: videoCount,
	}
}

// CourseDeletedEvent is emitted after a course was removed.
// OrphanedVideos counts the videos that still reference the course.
type CourseDeletedEvent struct {
	BaseEvent
	OrphanedVideos int  `json:"orphaned_videos"`
	Cascaded       bool `json:"cascaded"`
}

// Payload implements Event interface.
func (e CourseDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"orphaned_videos": e.OrphanedVideos,
		"cascaded":        e.Cascaded,
	}
}

// NewCourseDeletedEvent creates a new CourseDeletedEvent.
func NewCourseDeletedEvent(courseID, orphaned int, cascaded bool, at time.Time) CourseDeletedEvent {
	return CourseDeletedEvent{
		BaseEvent:      NewBaseEvent(EventCourseDeleted, courseID, at),
		OrphanedVideos: orphaned,
		Cascaded:       cascaded,
	}
}

// VideoEvent covers video.created, video.deleted and video.completed.
// The aggregate is the owning course so summary caches can be keyed by it.
type VideoEvent struct {
	BaseEvent
	VideoID  int `json:"video_id"`
	Duration int `json:"duration"`
	Order    int `json:"order"`
}

// Payload implements Event interface.
func (e VideoEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"video_id": e.VideoID,
		"duration": e.Duration,
		"order":    e.Order,
	}
}

// CourseID returns the owning course of the video.
func (e VideoEvent) CourseID() int {
	id, _ := strconv.Atoi(e.AggregateId)
	return id
}

// NewVideoEvent creates a video event of the given type.
func NewVideoEvent(eventType EventType, courseID, videoID, duration, order int, at time.Time) VideoEvent {
	return VideoEvent{
		BaseEvent: NewBaseEvent(eventType, courseID, at),
		VideoID:   videoID,
		Duration:  duration,
		Order:     order,
	}
}

// ArticleEvent covers article.published, article.updated and article.deleted.
type ArticleEvent struct {
	BaseEvent
	Title string `json:"title,omitempty"`
}

// Payload implements Event interface.
func (e ArticleEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"title": e.Title,
	}
}

// NewArticleEvent creates an article event of the given type.
func NewArticleEvent(eventType EventType, articleID int, title string, at time.Time) ArticleEvent {
	return ArticleEvent{
		BaseEvent: NewBaseEvent(eventType, articleID, at),
		Title:     title,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseProgressUpdatedEvent is emitted when an activity row was recorded.
type CourseProgressUpdatedEvent struct {
	BaseEvent
	CourseID        int `json:"course_id"`
	Progress        int `json:"progress"`
	OverallProgress int `json:"overall_progress"`
}

// Payload implements Event interface.
func (e CourseProgressUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":        e.CourseID,
		"progress":         e.Progress,
		"overall_progress": e.OverallProgress,
	}
}

// NewCourseProgressUpdatedEvent creates a new CourseProgressUpdatedEvent.
func NewCourseProgressUpdatedEvent(userID, courseID, pct, overall int, at time.Time) CourseProgressUpdatedEvent {
	return CourseProgressUpdatedEvent{
		BaseEvent:       NewBaseEvent(EventCourseProgressUpdated, userID, at),
		CourseID:        courseID,
		Progress:        pct,
		OverallProgress: overall,
	}
}

// StudyTimeAddedEvent is emitted when minutes were added to the study time.
type StudyTimeAddedEvent struct {
	BaseEvent
	Minutes        int `json:"minutes"`
	TotalStudyTime int `json:"total_study_time"`
}

// Payload implements Event interface.
func (e StudyTimeAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"minutes":          e.Minutes,
		"total_study_time": e.TotalStudyTime,
	}
}

// NewStudyTimeAddedEvent creates a new StudyTimeAddedEvent.
func NewStudyTimeAddedEvent(userID, minutes, total int, at time.Time) StudyTimeAddedEvent {
	return StudyTimeAddedEvent{
		BaseEvent:      NewBaseEvent(EventStudyTimeAdded, userID, at),
		Minutes:        minutes,
		TotalStudyTime: total,
	}
}

// AchievementUnlockedEvent is emitted when an achievement was unlocked.
type AchievementUnlockedEvent struct {
	BaseEvent
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id": e.AchievementID,
		"title":          e.Title,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID int, achievementID, title string, at time.Time) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID, at),
		AchievementID: achievementID,
		Title:         title,
	}
}

// StreakEvent covers progress.streak_updated and progress.streak_broken.
type StreakEvent struct {
	BaseEvent
	PreviousStreak int `json:"previous_streak"`
	Streak         int `json:"streak"`
}

// Payload implements Event interface.
func (e StreakEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"previous_streak": e.PreviousStreak,
		"streak":          e.Streak,
	}
}

// NewStreakEvent creates a streak event of the given type.
func NewStreakEvent(eventType EventType, userID, previous, streak int, at time.Time) StreakEvent {
	return StreakEvent{
		BaseEvent:      NewBaseEvent(eventType, userID, at),
		PreviousStreak: previous,
		Streak:         streak,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for logging/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope serializes an event into an EventEnvelope.
func NewEnvelope(event Event) (EventEnvelope, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return EventEnvelope{}, err
	}
	env := EventEnvelope{
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Version:     1,
		Payload:     payload,
	}
	if meta, ok := event.(interface{ eventMeta() BaseEvent }); ok {
		base := meta.eventMeta()
		env.ID = base.ID
		env.Version = base.Version
		env.CorrelationID = base.CorrelationID
	}
	return env, nil
}

func (e BaseEvent) eventMeta() BaseEvent {
	return e
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
