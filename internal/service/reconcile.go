package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookstore/internal/repository"
)

type ReconcileResult struct {
	Delivered  int64
	Completed  int64
	SettledCOD int64
}

// Reconciler moves stored order statuses forward once their timestamps pass.
// Every update is predicate based, so repeated passes converge.
type Reconciler interface {
	RunOnce(ctx context.Context) (*ReconcileResult, error)
	Start(ctx context.Context, interval time.Duration)
}

type reconcilerImpl struct {
	orderRepo repository.OrderRepository
	log       *slog.Logger
	now       clock
}

func NewReconciler(orderRepo repository.OrderRepository, log *slog.Logger) Reconciler {
	return &reconcilerImpl{
		orderRepo: orderRepo,
		log:       log,
		now:       utcNow,
	}
}

func (r *reconcilerImpl) RunOnce(ctx context.Context) (*ReconcileResult, error) {
	now := r.now()
	res := &ReconcileResult{}

	var err error
	res.Delivered, err = r.orderRepo.MarkOverdueDelivered(ctx, now)
	if err != nil {
		return res, fmt.Errorf("mark overdue orders delivered: %w", err)
	}

	res.Completed, err = r.orderRepo.MarkExpiredRentalsCompleted(ctx, now)
	if err != nil {
		return res, fmt.Errorf("complete expired rentals: %w", err)
	}

	res.SettledCOD, err = r.orderRepo.SettleDeliveredCOD(ctx)
	if err != nil {
		return res, fmt.Errorf("settle delivered cod orders: %w", err)
	}

	return res, nil
}

// Start blocks, running a pass every interval until ctx is cancelled. A failed
// pass is logged and retried on the next tick.
func (r *reconcilerImpl) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *reconcilerImpl) tick(ctx context.Context) {
	res, err := r.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("order reconciliation failed", "err", err)
		return
	}
	if res.Delivered+res.Completed+res.SettledCOD > 0 {
		r.log.Info("orders reconciled",
			"delivered", res.Delivered,
			"completed", res.Completed,
			"settled_cod", res.SettledCOD,
		)
	}
}
