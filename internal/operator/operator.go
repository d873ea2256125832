package operator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	"github.com/carson-networks/cashdesk-server/internal/storage"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage   *storage.Storage
	deps      *actions.Deps
	publisher events.Publisher
	queue     chan ActionItem
}

func NewOperator(s *storage.Storage, deps *actions.Deps, publisher events.Publisher, queue chan ActionItem) *Operator {
	return &Operator{
		storage:   s,
		deps:      deps,
		publisher: publisher,
		queue:     queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	err = item.action.Perform(item.ctx, o.deps, writer)
	if err != nil {
		_ = writer.Rollback()
		item.response <- ActionItemResponse{err: err}
		return
	}

	if err = writer.Commit(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	o.publishEvents(item.ctx, item.action)
	item.response <- ActionItemResponse{}
}

// publishEvents emits integration events only after the unit of work commits.
// Publish failures are logged, not returned; the state change already stands.
func (o *Operator) publishEvents(ctx context.Context, action actions.IAction) {
	source, ok := action.(actions.EventSource)
	if !ok || len(source.Events()) == 0 {
		return
	}
	if err := o.publisher.Publish(ctx, source.Events()...); err != nil {
		logrus.WithError(err).Error("failed to publish integration events")
	}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
