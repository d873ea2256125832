package actions

import (
	"context"
	"time"

	"github.com/carson-networks/cashdesk-server/internal/cari"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/journal"
	"github.com/carson-networks/cashdesk-server/internal/storage"
)

// Deps carries the collaborators every action may need. The operator owns one
// instance and passes it to each Perform call.
type Deps struct {
	Journal journal.Poster
	Settler cari.Settler
	Now     func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

type IAction interface {
	Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error
}

// EventSource is implemented by actions that report integration events. The
// operator publishes them only after the unit of work commits.
type EventSource interface {
	Events() []events.Event
}

// eventRecorder collects events during Perform; embedded by actions.
type eventRecorder struct {
	events []events.Event
}

func (r *eventRecorder) emit(event events.Event) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) Events() []events.Event {
	return r.events
}

// Column widths of idempotency_key and integration_event_uid. Derived child
// identifiers are truncated to them so a replayed parent always derives the
// same children.
const maxDerivedKeyLen = 100

// childKey derives a deterministic child idempotency key (or event uid) for
// one leg of a composite operation.
func childKey(prefix, parent string) string {
	derived := prefix + ":" + parent
	if len(derived) > maxDerivedKeyLen {
		derived = derived[:maxDerivedKeyLen]
	}
	return derived
}

// childUID derives a child integration event uid, or nil when the parent
// carries none.
func childUID(prefix string, parent *string) *string {
	if parent == nil {
		return nil
	}
	derived := childKey(prefix, *parent)
	return &derived
}
