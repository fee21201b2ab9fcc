// Package audit records write failures and other notable reconciliation
// outcomes in an append-only trail keyed by record. Emission is best-effort:
// an unreachable audit store must never fail a reconciliation run.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModuleName identifies this service in audit entries, mirroring how the
// host platform tags log events with the module that produced them.
const ModuleName = "epicsync"

// Event is one audit trail entry.
type Event struct {
	ID        uuid.UUID
	ProjectID string
	RecordID  string
	EventID   string
	Module    string
	Detail    string
	Timestamp time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRecord(ctx context.Context, projectID, recordID string) ([]Event, error)
}

// Publisher stamps and appends audit events. It is store-backed so tests can
// swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Module == "" {
		event.Module = ModuleName
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.store.Append(ctx, event)
}
