package events

import (
	"context"

	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/messaging"
)

// ReorderEventPublisher publishes reorder-domain events. Delivery is
// best-effort: a subscriber that never binds a queue simply never learns a
// run's outcome, which is acceptable because the threshold store itself can
// always be re-queried.
type ReorderEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewReorderEventPublisher creates a new reorder event publisher
func NewReorderEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ReorderEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeReorderEvents, "reorder-service", log)
	if err != nil {
		return nil, err
	}

	return &ReorderEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishSyncStatus broadcasts the outcome of a reconciliation run. Failures
// are logged, never returned: by the time a run finishes the trigger call has
// long since been acknowledged, so there is nobody left to raise to.
func (p *ReorderEventPublisher) PublishSyncStatus(ctx context.Context, data messaging.SyncStatusEvent) {
	if err := p.publisher.Publish(ctx, messaging.EventSyncStatus, data); err != nil {
		p.logger.Error().Err(err).
			Str("run_id", data.RunID).
			Str("outcome", data.Outcome).
			Msg("failed to publish sync status event")
	}
}

// PublishThresholdUpdated announces user edits of reorder levels
func (p *ReorderEventPublisher) PublishThresholdUpdated(ctx context.Context, ids []int64, actorID int64) {
	data := messaging.ThresholdUpdatedEvent{
		IDs:     ids,
		ActorID: actorID,
	}
	if err := p.publisher.Publish(ctx, messaging.EventThresholdUpdated, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish threshold updated event")
	}
}
