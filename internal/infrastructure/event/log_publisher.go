package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/estate/listings/internal/domain/shared"
)

// LogPublisher writes every event to the application log. It is the default
// sink when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs each event at info level
func (p *LogPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if e == nil {
			continue
		}
		p.logger.Info("Domain event",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID()),
			zap.Time("occurred_at", e.OccurredAt()),
		)
	}
	return nil
}

var _ shared.EventPublisher = (*LogPublisher)(nil)
