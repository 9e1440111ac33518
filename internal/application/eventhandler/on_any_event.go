package eventhandler

import (
	"sync"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ACTIVITY LOGGER
// Пишет каждое событие в лог в виде конверта и хранит последние N конвертов
// для отладки.
// ═══════════════════════════════════════════════════════════════════════════

// DefaultJournalSize is how many envelopes ActivityLogger keeps.
const DefaultJournalSize = 100

// ActivityLogger logs every published event.
type ActivityLogger struct {
	log  *logger.Logger
	size int

	mu      sync.Mutex
	journal []shared.EventEnvelope
}

// NewActivityLogger creates a new ActivityLogger keeping the last size envelopes.
func NewActivityLogger(log *logger.Logger, size int) *ActivityLogger {
	if log == nil {
		log = logger.Discard()
	}
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &ActivityLogger{
		log:  log.With(logger.Component("activity_logger")),
		size: size,
	}
}

// Register subscribes the handler to every event.
func (h *ActivityLogger) Register(sub shared.EventSubscriber) error {
	return sub.SubscribeAll(h.Handle)
}

// Handle records the event.
func (h *ActivityLogger) Handle(event shared.Event) error {
	env, err := shared.NewEnvelope(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.journal = append(h.journal, env)
	if over := len(h.journal) - h.size; over > 0 {
		h.journal = append(h.journal[:0], h.journal[over:]...)
	}
	h.mu.Unlock()

	fields := []logger.Field{
		logger.EventType(string(env.Type)),
		logger.String("event_id", env.ID),
		logger.String("aggregate_id", env.AggregateID),
		logger.String("payload", string(env.Payload)),
	}
	if env.CorrelationID != "" {
		fields = append(fields, logger.String("correlation_id", env.CorrelationID))
	}
	h.log.Info("event", fields...)

	return nil
}

// Recent returns the journal, oldest first.
func (h *ActivityLogger) Recent() []shared.EventEnvelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.EventEnvelope(nil), h.journal...)
}
