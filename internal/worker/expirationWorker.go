package worker

import (
	"context"
	"time"

	"github.com/eventseat/reservation-service/internal/service"

	"github.com/sirupsen/logrus"
)

// ExpirationWorker periodically reclaims seats held by pending reservations
// that passed their deadline. A failed sweep is logged and retried on the
// next tick; it never stops the loop.
type ExpirationWorker struct {
	reservationService service.ReservationService
	interval           time.Duration
}

func NewExpirationWorker(reservationService service.ReservationService, interval time.Duration) *ExpirationWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ExpirationWorker{
		reservationService: reservationService,
		interval:           interval,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Expiration worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Expiration worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirationWorker) sweep(ctx context.Context) {
	count, err := w.reservationService.ExpireOverdueReservations(ctx)
	if err != nil {
		logrus.Errorf("Failed to expire overdue reservations: %v", err)
		return
	}

	if count == 0 {
		logrus.Debug("No overdue reservations found")
		return
	}

	logrus.Infof("Expiration sweep completed: %d reservations expired", count)
}
