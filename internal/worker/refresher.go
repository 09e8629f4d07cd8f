package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/frontdesk/internal/store"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

// Refresher reloads the appointments and alerts collections on a fixed
// interval. Failures are logged and retried on the next tick; the store
// keeps its previous data.
type Refresher struct {
	store       *store.Store
	interval    time.Duration
	windowHours int
	logger      *logger.Logger
}

func NewRefresher(st *store.Store, interval time.Duration, windowHours int, log *logger.Logger) *Refresher {
	return &Refresher{
		store:       st,
		interval:    interval,
		windowHours: windowHours,
		logger:      log.WithComponent("refresher"),
	}
}

// Start refreshes once immediately, then on every tick until the context is
// cancelled. The ticker stops with the owning context so no refresh can
// land after the consumer is gone.
func (r *Refresher) Start(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.store.LoadAppointments(ctx, r.windowHours); err != nil {
		r.logger.Error(err, "appointment refresh failed")
	}
	if err := r.store.LoadAlerts(ctx); err != nil {
		r.logger.Error(err, "alert refresh failed")
	}
}
