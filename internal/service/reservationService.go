package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eventseat/reservation-service/internal/clock"
	repository "github.com/eventseat/reservation-service/internal/database/postgres"
	"github.com/eventseat/reservation-service/internal/entity"

	"github.com/sirupsen/logrus"
)

const (
	defaultHoldDuration = 10 * time.Minute
	defaultMaxSeats     = 10
)

// ReservationConfig tunes the hold lifecycle.
type ReservationConfig struct {
	// HoldDuration is how long a pending hold keeps its seats before it
	// becomes reclaimable.
	HoldDuration time.Duration
	// MaxSeatsPerReservation caps the seat count of a single hold.
	MaxSeatsPerReservation int
}

type reservationService struct {
	eventRepo       repository.EventRepository
	reservationRepo repository.ReservationRepository
	cache           EventCache
	clock           clock.Clock
	holdDuration    time.Duration
	maxSeats        int
}

// NewReservationService creates the reservation engine. cache may be nil
// when redis is not configured.
func NewReservationService(
	eventRepo repository.EventRepository,
	reservationRepo repository.ReservationRepository,
	cache EventCache,
	clk clock.Clock,
	cfg ReservationConfig,
) ReservationService {
	if cfg.HoldDuration <= 0 {
		cfg.HoldDuration = defaultHoldDuration
	}
	if cfg.MaxSeatsPerReservation <= 0 {
		cfg.MaxSeatsPerReservation = defaultMaxSeats
	}

	return &reservationService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		cache:           cache,
		clock:           clk,
		holdDuration:    cfg.HoldDuration,
		maxSeats:        cfg.MaxSeatsPerReservation,
	}
}

// CreateHold debits seats from the event and records a pending reservation
// with a deadline. The availability check and the debit happen under the
// event's row lock inside one transaction, so two competing holds on the
// same event serialize and the loser sees the winner's committed count.
func (s *reservationService) CreateHold(ctx context.Context, req *CreateHoldRequest) (*HoldResult, error) {
	if req.SeatCount <= 0 || req.SeatCount > s.maxSeats {
		return nil, fmt.Errorf("%w: seat count must be between 1 and %d, got %d",
			entity.ErrInvalidSeatCount, s.maxSeats, req.SeatCount)
	}

	now := s.clock.Now()
	var result *HoldResult

	err := s.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(txCtx, req.EventID)
		if err != nil {
			return err
		}

		if event.AvailableSeats < req.SeatCount {
			return fmt.Errorf("%w: requested %d, available %d",
				entity.ErrInsufficientSeats, req.SeatCount, event.AvailableSeats)
		}

		if err := s.eventRepo.AddAvailableSeats(txCtx, event.ID, -req.SeatCount); err != nil {
			return err
		}

		reservation := &entity.Reservation{
			EventID:   req.EventID,
			UserID:    req.UserID,
			SeatCount: req.SeatCount,
			Status:    entity.ReservationStatusPending,
			ExpiresAt: now.Add(s.holdDuration),
		}
		if err := s.reservationRepo.Insert(txCtx, reservation); err != nil {
			return err
		}

		result = &HoldResult{
			ReservationID:  reservation.ID,
			EventID:        event.ID,
			Title:          event.Title,
			Price:          event.Price,
			SeatCount:      reservation.SeatCount,
			Status:         reservation.Status,
			AvailableSeats: event.AvailableSeats - req.SeatCount,
			ExpiresAt:      reservation.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEvent(ctx, req.EventID)

	logrus.WithFields(logrus.Fields{
		"reservation_id": result.ReservationID,
		"event_id":       result.EventID,
		"seat_count":     result.SeatCount,
		"expires_at":     result.ExpiresAt,
	}).Info("Reservation hold created")

	return result, nil
}

// ConfirmReservation finalizes a pending hold. Inventory is untouched: the
// seats were already debited when the hold was created. A hold found past
// its deadline is expired here instead of waiting for the sweeper, seats
// are credited back, and the commit of that transition survives the error
// returned to the caller.
func (s *reservationService) ConfirmReservation(ctx context.Context, eventID, reservationID int64) (*ConfirmResult, error) {
	now := s.clock.Now()

	var result *ConfirmResult
	var lazyExpired bool

	err := s.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetForUpdate(txCtx, eventID, reservationID)
		if err != nil {
			return err
		}

		switch reservation.Status {
		case entity.ReservationStatusConfirmed:
			return entity.ErrAlreadyConfirmed
		case entity.ReservationStatusCancelled:
			return entity.ErrAlreadyCancelled
		case entity.ReservationStatusExpired:
			return entity.ErrAlreadyExpired
		}

		if now.After(reservation.ExpiresAt) {
			if _, err := s.creditSeats(txCtx, reservation); err != nil {
				return err
			}
			if err := s.reservationRepo.UpdateStatus(txCtx, reservation.ID, entity.ReservationStatusExpired); err != nil {
				return err
			}
			lazyExpired = true
			return nil
		}

		if err := s.reservationRepo.MarkConfirmed(txCtx, reservation.ID, now); err != nil {
			return err
		}

		event, err := s.eventRepo.GetByID(txCtx, eventID)
		if err != nil {
			return err
		}

		result = &ConfirmResult{
			ReservationID:  reservation.ID,
			EventID:        eventID,
			Status:         entity.ReservationStatusConfirmed,
			AvailableSeats: event.AvailableSeats,
			ConfirmedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lazyExpired {
		s.invalidateEvent(ctx, eventID)
		logrus.WithFields(logrus.Fields{
			"reservation_id": reservationID,
			"event_id":       eventID,
		}).Warn("Reservation expired during confirm attempt")
		return nil, entity.ErrReservationExpired
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"event_id":       eventID,
	}).Info("Reservation confirmed")

	return result, nil
}

// CancelReservation releases a hold before confirmation. Confirmed
// reservations must go through RefundReservation instead.
func (s *reservationService) CancelReservation(ctx context.Context, eventID, reservationID int64) (*ReleaseResult, error) {
	var result *ReleaseResult

	err := s.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetForUpdate(txCtx, eventID, reservationID)
		if err != nil {
			return err
		}

		if reservation.Status == entity.ReservationStatusConfirmed {
			return entity.ErrCancelConfirmed
		}
		if reservation.Status.IsTerminal() {
			return entity.ErrAlreadyReleased
		}

		availableSeats, err := s.creditSeats(txCtx, reservation)
		if err != nil {
			return err
		}
		if err := s.reservationRepo.UpdateStatus(txCtx, reservation.ID, entity.ReservationStatusCancelled); err != nil {
			return err
		}

		result = &ReleaseResult{
			ReservationID:  reservation.ID,
			EventID:        eventID,
			Status:         entity.ReservationStatusCancelled,
			AvailableSeats: availableSeats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEvent(ctx, eventID)

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"event_id":       eventID,
	}).Info("Reservation cancelled")

	return result, nil
}

// RefundReservation cancels a confirmed reservation and returns its seats
// to the pool. There is no distinct refunded status; the reservation lands
// on CANCELLED like a pre-confirmation cancel.
func (s *reservationService) RefundReservation(ctx context.Context, eventID, reservationID int64) (*RefundResult, error) {
	var result *RefundResult

	err := s.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetForUpdate(txCtx, eventID, reservationID)
		if err != nil {
			return err
		}

		if reservation.Status != entity.ReservationStatusConfirmed {
			return entity.ErrNotConfirmed
		}

		availableSeats, err := s.creditSeats(txCtx, reservation)
		if err != nil {
			return err
		}
		if err := s.reservationRepo.UpdateStatus(txCtx, reservation.ID, entity.ReservationStatusCancelled); err != nil {
			return err
		}

		result = &RefundResult{
			ReservationID:  reservation.ID,
			EventID:        eventID,
			RefundedSeats:  reservation.SeatCount,
			Status:         entity.ReservationStatusCancelled,
			AvailableSeats: availableSeats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEvent(ctx, eventID)

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"event_id":       eventID,
		"refunded_seats": result.RefundedSeats,
	}).Info("Reservation refunded")

	return result, nil
}

// ExpireOverdueReservations is the sweep body: one transaction that locks
// every overdue pending reservation, credits the seats back per event in a
// single increment, and bulk-marks the reservations expired. A failure
// rolls the whole run back; the worker retries on its next tick.
func (s *reservationService) ExpireOverdueReservations(ctx context.Context) (int, error) {
	now := s.clock.Now()

	var expired []*entity.Reservation
	credits := make(map[int64]int)

	err := s.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		expired, err = s.reservationRepo.FindExpiredForUpdate(txCtx, now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(expired))
		for _, reservation := range expired {
			credits[reservation.EventID] += reservation.SeatCount
			ids = append(ids, reservation.ID)
		}

		// Lock events in a stable order.
		eventIDs := make([]int64, 0, len(credits))
		for eventID := range credits {
			eventIDs = append(eventIDs, eventID)
		}
		sort.Slice(eventIDs, func(i, j int) bool { return eventIDs[i] < eventIDs[j] })

		for _, eventID := range eventIDs {
			if _, err := s.eventRepo.GetForUpdate(txCtx, eventID); err != nil {
				return err
			}
			if err := s.eventRepo.AddAvailableSeats(txCtx, eventID, credits[eventID]); err != nil {
				return err
			}
		}

		return s.reservationRepo.BulkUpdateStatus(txCtx, ids, entity.ReservationStatusExpired)
	})
	if err != nil {
		return 0, err
	}

	for eventID := range credits {
		s.invalidateEvent(ctx, eventID)
	}

	if len(expired) > 0 {
		logrus.WithFields(logrus.Fields{
			"expired_count":   len(expired),
			"affected_events": len(credits),
		}).Info("Expired overdue reservations")
	}

	return len(expired), nil
}

// creditSeats returns a reservation's seats to its event under the event
// row lock and reports the resulting availability. Callers own the status
// transition that makes the credit happen at most once.
func (s *reservationService) creditSeats(ctx context.Context, reservation *entity.Reservation) (int, error) {
	event, err := s.eventRepo.GetForUpdate(ctx, reservation.EventID)
	if err != nil {
		return 0, err
	}
	if err := s.eventRepo.AddAvailableSeats(ctx, event.ID, reservation.SeatCount); err != nil {
		return 0, err
	}
	return event.AvailableSeats + reservation.SeatCount, nil
}

func (s *reservationService) invalidateEvent(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		logrus.Warnf("Failed to invalidate event %d cache: %v", eventID, err)
	}
}

func (s *reservationService) GetReservation(ctx context.Context, id int64) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (s *reservationService) GetEventReservations(ctx context.Context, eventID int64) ([]*entity.Reservation, error) {
	reservations, err := s.reservationRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) GetUserReservations(ctx context.Context, userID int64) ([]*entity.Reservation, error) {
	reservations, err := s.reservationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reservations: %w", err)
	}
	return reservations, nil
}
