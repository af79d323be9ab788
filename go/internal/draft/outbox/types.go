// Package outbox is the event bus fan-out (§4.8): domain events are
// written to an outbox table in the same transaction as the state
// mutation that produced them, and a background Worker relays the
// table to NATS JetStream so a publish failure can never desync from
// a committed write. Grounded on the teacher's draft/outbox package.
package outbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

// Event is the publisher-facing shape of a single outbox row.
type Event struct {
	ID        uuid.UUID
	LeagueID  uuid.UUID
	EventType string
	Payload   []byte
}

// Publisher relays a single outbox event to the fan-out transport. The
// Worker depends on this interface rather than *JetStreamPublisher
// directly so tests can substitute a fake.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func toEvent(row store.OutboxEvent) Event {
	return Event{
		ID:        row.ID,
		LeagueID:  row.LeagueID,
		EventType: row.EventType,
		Payload:   row.Payload,
	}
}
