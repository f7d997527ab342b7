package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
	"github.com/stocklens/stocklens-backend/internal/reorder/repository"
	"github.com/stocklens/stocklens-backend/pkg/logger"
	"github.com/stocklens/stocklens-backend/pkg/messaging"
)

// SyncNotifier receives the outcome of a reconciliation run
type SyncNotifier interface {
	PublishSyncStatus(ctx context.Context, data messaging.SyncStatusEvent)
}

// SyncService reconciles the dimension tuples of the source store into the
// threshold store. One run is one transaction: either every batch lands or
// the threshold table is left exactly as it was.
//
// Runs are not coordinated; two overlapping runs race benignly because the
// upsert only ever rewrites display names, never reorder levels. Last writer
// wins on the name fields. This is a known, accepted race rather than a
// locking problem.
type SyncService struct {
	dimensions *repository.DimensionRepository
	thresholds *repository.ThresholdRepository
	notifier   SyncNotifier
	logger     *logger.Logger

	batchSize    int
	defaultLevel decimal.Decimal
}

// NewSyncService creates a new sync service
func NewSyncService(
	dimensions *repository.DimensionRepository,
	thresholds *repository.ThresholdRepository,
	notifier SyncNotifier,
	batchSize int,
	defaultLevel float64,
	log *logger.Logger,
) *SyncService {
	return &SyncService{
		dimensions:   dimensions,
		thresholds:   thresholds,
		notifier:     notifier,
		logger:       log.WithComponent("sync"),
		batchSize:    batchSize,
		defaultLevel: decimal.NewFromFloat(defaultLevel),
	}
}

// Start launches a reconciliation run in the background and returns its run
// ID immediately. The outcome is reported only through the notification
// exchange; the caller is expected to ack "started" and move on.
//
// The run deliberately does not inherit the request context: an HTTP client
// disconnecting must not abort a half-finished sync.
func (s *SyncService) Start(actorID int64) string {
	runID := uuid.New().String()

	go s.Run(context.Background(), runID, actorID)

	return runID
}

// Run executes one reconciliation synchronously. Exported so tests and future
// schedulers can drive it directly.
func (s *SyncService) Run(ctx context.Context, runID string, actorID int64) {
	log := s.logger.WithRunID(runID)
	log.Info().Int64("actor_id", actorID).Msg("reorder level sync started")

	total := 0
	inserted := 0

	err := s.thresholds.DB().Transaction(ctx, func(tx *sqlx.Tx) error {
		return s.dimensions.StreamTuples(ctx, s.batchSize, func(batch []domain.DimensionTuple) error {
			n, err := s.thresholds.UpsertBatch(ctx, tx, batch, s.defaultLevel, actorID)
			if err != nil {
				return err
			}
			total += len(batch)
			inserted += n
			return nil
		})
	})

	if err != nil {
		log.Error().Err(err).Int("tuples", total).Msg("reorder level sync failed, rolled back")
		s.notifier.PublishSyncStatus(ctx, messaging.SyncStatusEvent{
			RunID:   runID,
			Outcome: messaging.OutcomeFailed,
			Message: fmt.Sprintf("Error syncing reorder levels: %v", err),
			ActorID: actorID,
		})
		return
	}

	log.Info().Int("tuples", total).Int("inserted", inserted).Msg("reorder level sync completed")
	s.notifier.PublishSyncStatus(ctx, messaging.SyncStatusEvent{
		RunID:      runID,
		Outcome:    messaging.OutcomeSucceeded,
		Message:    "Reorder levels synced successfully",
		TupleCount: total,
		ActorID:    actorID,
	})
}
