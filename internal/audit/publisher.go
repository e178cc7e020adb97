package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher hands events to the background worker through a buffered channel.
// Emitting never blocks domain logic: when the buffer is full the event is
// dropped, since the ledger write it describes has already succeeded.
type Publisher struct {
	inbox chan Event
	clock func() time.Time
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherClock sets the timestamp source for testability.
func WithPublisherClock(clock func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPublisher creates a publisher with the given buffer capacity.
func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	if buffer <= 0 {
		buffer = 64
	}
	p := &Publisher{
		inbox: make(chan Event, buffer),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit enqueues an event, filling in ID and timestamp. Safe on a nil
// publisher so services can treat auditing as optional.
func (p *Publisher) Emit(event Event) {
	if p == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	select {
	case p.inbox <- event:
	default:
	}
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
