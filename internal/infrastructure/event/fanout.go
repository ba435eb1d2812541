package event

import (
	"context"
	"errors"

	"github.com/estate/listings/internal/domain/shared"
)

// Fanout publishes to every wrapped publisher in order. A failing publisher
// does not stop the rest; all failures are joined into the returned error.
type Fanout struct {
	publishers []shared.EventPublisher
}

// NewFanout creates a Fanout over publishers, skipping nil entries
func NewFanout(publishers ...shared.EventPublisher) *Fanout {
	f := &Fanout{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Publish implements shared.EventPublisher
func (f *Fanout) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ shared.EventPublisher = (*Fanout)(nil)
