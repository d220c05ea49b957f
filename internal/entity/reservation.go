package entity

import (
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// IsTerminal reports whether no transition may leave the status.
// CONFIRMED is not terminal: a refund moves it to CANCELLED.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusExpired
}

// HoldsSeats reports whether a reservation in this status still has its
// seat count debited from the event's availability.
func (s ReservationStatus) HoldsSeats() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

type Reservation struct {
	ID          int64             `json:"id" db:"id"`
	EventID     int64             `json:"event_id" db:"event_id"`
	UserID      *int64            `json:"user_id,omitempty" db:"user_id"`
	SeatCount   int               `json:"seat_count" db:"seat_count"`
	Status      ReservationStatus `json:"status" db:"status"`
	ExpiresAt   time.Time         `json:"expires_at" db:"expires_at"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}
