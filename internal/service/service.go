package service

import (
	"context"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
)

// EventCache is the read-through cache in front of the events relation.
// Implementations must tolerate concurrent use; the services treat every
// cache failure as a miss.
type EventCache interface {
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	SetEvent(ctx context.Context, event *entity.Event) error
	InvalidateEvent(ctx context.Context, id int64) error
}

type EventService interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error)
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)
	GetAllEvents(ctx context.Context) ([]*entity.Event, error)
	UpdateEvent(ctx context.Context, id int64, req *UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// ReservationService is the transactional core: every mutating operation
// runs inside one datastore transaction and serializes on the affected
// inventory and reservation rows.
type ReservationService interface {
	CreateHold(ctx context.Context, req *CreateHoldRequest) (*HoldResult, error)
	ConfirmReservation(ctx context.Context, eventID, reservationID int64) (*ConfirmResult, error)
	CancelReservation(ctx context.Context, eventID, reservationID int64) (*ReleaseResult, error)
	RefundReservation(ctx context.Context, eventID, reservationID int64) (*RefundResult, error)

	// ExpireOverdueReservations reclaims seats from every pending
	// reservation past its deadline. Called by the expiration worker on a
	// timer; returns the number of reservations expired.
	ExpireOverdueReservations(ctx context.Context) (int, error)

	GetReservation(ctx context.Context, id int64) (*entity.Reservation, error)
	GetEventReservations(ctx context.Context, eventID int64) ([]*entity.Reservation, error)
	GetUserReservations(ctx context.Context, userID int64) ([]*entity.Reservation, error)
}

// CreateEventRequest represents the data needed to create an event
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=1000"`
	Venue       string `json:"venue" binding:"max=255"`
	Price       int64  `json:"price" binding:"min=0"`
	TotalSeats  int    `json:"total_seats" binding:"required,min=1,max=100000"`
}

// UpdateEventRequest carries a partial update of an event's descriptive
// fields. Seat counts cannot be edited; inventory belongs to the
// reservation engine.
type UpdateEventRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Venue       *string `json:"venue" binding:"omitempty,max=255"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
}

// CreateHoldRequest represents a request to place a temporary hold on seats
type CreateHoldRequest struct {
	EventID   int64  `json:"-"`
	SeatCount int    `json:"seat_count" binding:"required"`
	UserID    *int64 `json:"-"`
}

type HoldResult struct {
	ReservationID  int64                    `json:"reservation_id"`
	EventID        int64                    `json:"event_id"`
	Title          string                   `json:"title"`
	Price          int64                    `json:"price"`
	SeatCount      int                      `json:"seat_count"`
	Status         entity.ReservationStatus `json:"status"`
	AvailableSeats int                      `json:"available_seats"`
	ExpiresAt      time.Time                `json:"expires_at"`
}

type ConfirmResult struct {
	ReservationID  int64                    `json:"reservation_id"`
	EventID        int64                    `json:"event_id"`
	Status         entity.ReservationStatus `json:"status"`
	AvailableSeats int                      `json:"available_seats"`
	ConfirmedAt    time.Time                `json:"confirmed_at"`
}

type ReleaseResult struct {
	ReservationID  int64                    `json:"reservation_id"`
	EventID        int64                    `json:"event_id"`
	Status         entity.ReservationStatus `json:"status"`
	AvailableSeats int                      `json:"available_seats"`
}

type RefundResult struct {
	ReservationID  int64                    `json:"reservation_id"`
	EventID        int64                    `json:"event_id"`
	RefundedSeats  int                      `json:"refunded_seats"`
	Status         entity.ReservationStatus `json:"status"`
	AvailableSeats int                      `json:"available_seats"`
}
