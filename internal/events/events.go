package events

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Event is one integration event emitted after a unit of work commits.
type Event struct {
	Name       string    `json:"name"`
	TenantID   uuid.UUID `json:"tenantId"`
	EntityID   uuid.UUID `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	NameTransactionPosted   = "cash_transaction.posted"
	NameTransactionReversed = "cash_transaction.reversed"
	NameTransferInitiated   = "cash_transfer.initiated"
	NameTransferReceived    = "cash_transfer.received"
	NameTransferCanceled    = "cash_transfer.canceled"
)

// Publisher delivers committed events to downstream consumers. Publishing is
// best-effort; a failure must never fail the already-committed request.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher is wired when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error {
	return nil
}
