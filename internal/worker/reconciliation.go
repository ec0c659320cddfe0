package worker

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/repo"
	"ecom-checkout/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("worker", "reconciliation").Logger()

// ReconciliationWorker periodically re-drives fulfillment for orders that
// are PAID but whose stock decrement never landed, e.g. because the process
// died between verification and fulfillment. Fulfillment is idempotent, so
// racing the verify path is harmless.
type ReconciliationWorker struct {
	store     repo.Store
	fulfill   *service.FulfillmentService
	interval  time.Duration
	olderThan time.Duration
	batchSize int
}

func NewReconciliationWorker(
	store repo.Store,
	fulfill *service.FulfillmentService,
	interval time.Duration,
	olderThan time.Duration,
	batchSize int,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		store:     store,
		fulfill:   fulfill,
		interval:  interval,
		olderThan: olderThan,
		batchSize: batchSize,
	}
}

func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	logger.Info().Msg("reconciliation worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rw.Process(ctx); err != nil {
				logger.Error().Err(err).Msg("reconciliation pass failed")
			}
		}
	}
}

// Process runs one reconciliation pass.
func (rw *ReconciliationWorker) Process(ctx context.Context) error {
	stuck, err := rw.store.Ledger().FindUnfulfilledPaid(ctx, rw.olderThan, rw.batchSize)
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		return nil
	}

	logger.Info().Int("count", len(stuck)).Msg("found unfulfilled paid orders")

	for _, order := range stuck {
		err := rw.fulfill.Fulfill(ctx, order.Username, order.OrderID)
		switch {
		case err == nil:
			logger.Info().Str("order_id", order.OrderID).Msg("reconciled order")
		case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidSnapshot):
			// Not transient: retrying cannot help without operator
			// action, so only log it.
			logger.Warn().Err(err).Str("order_id", order.OrderID).Msg("order cannot be fulfilled")
		default:
			logger.Error().Err(err).Str("order_id", order.OrderID).Msg("fulfillment retry failed")
		}
	}
	return nil
}
