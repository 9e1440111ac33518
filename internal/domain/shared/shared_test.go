package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotFound_CarriesKindAndID(t *testing.T) {
	err := NewNotFound(DomainVideo, "Update", 42)

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "video.Update")
	assert.Contains(t, err.Error(), "id=42")

	id, ok := EntityIDOf(fmt.Errorf("outer: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 42, id)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(DomainCourse, " 17 ")
	require.NoError(t, err)
	assert.Equal(t, 17, id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5", "99999999999999999999999"} {
		_, err := ParseID(DomainCourse, raw)
		assert.True(t, IsNotFound(err), raw)

		var de *DomainError
		require.True(t, errors.As(err, &de), raw)
		assert.Equal(t, DomainCourse, de.Domain)
	}
}

func TestNewValidation(t *testing.T) {
	cause := errors.New("title is required")
	err := NewValidation(DomainArticle, "Save", "invalid article", cause)

	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFound(err))
}

func TestRoundedMean(t *testing.T) {
	assert.Equal(t, 0, RoundedMean(nil))
	assert.Equal(t, 70, RoundedMean([]int{80, 60}))
	assert.Equal(t, 67, RoundedMean([]int{100, 50, 50}))
	assert.Equal(t, 3, RoundedMean([]int{2, 3}))
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, Percentage(0), CompletionPercentage(0, 0))
	assert.Equal(t, Percentage(33), CompletionPercentage(1, 3))
	assert.Equal(t, Percentage(100), CompletionPercentage(4, 4))
	assert.True(t, CompletionPercentage(5, 4).IsComplete())
}

func TestNewPercentage(t *testing.T) {
	p, err := NewPercentage(55)
	require.NoError(t, err)
	assert.Equal(t, "55%", p.String())

	_, err = NewPercentage(101)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestNewEnvelope(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	event := NewCourseCreatedEvent(3, "Go 입문", "master", 2, at)
	event.BaseEvent = event.WithCorrelationID("req-1")

	env, err := NewEnvelope(event)
	require.NoError(t, err)

	assert.Equal(t, EventCourseCreated, env.Type)
	assert.Equal(t, "3", env.AggregateID)
	assert.Equal(t, at, env.Timestamp)
	assert.Equal(t, "req-1", env.CorrelationID)
	assert.NotEmpty(t, env.ID)
	assert.JSONEq(t, `{"title":"Go 입문","course_type":"master","video_count":2}`, string(env.Payload))
}

func TestVideoEvent_CourseID(t *testing.T) {
	event := NewVideoEvent(EventVideoCompleted, 9, 31, 12, 1, time.Now())
	assert.Equal(t, 9, event.CourseID())
	assert.Equal(t, EventVideoCompleted, event.EventType())
}
