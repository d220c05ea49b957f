package entity

import "errors"

var (
	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidSeats  = errors.New("total seats must be positive")
	ErrEventHasHolds = errors.New("event still has active reservations")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidSeatCount    = errors.New("invalid seat count")
	ErrInsufficientSeats   = errors.New("not enough available seats")
	ErrAlreadyConfirmed    = errors.New("reservation is already confirmed")
	ErrAlreadyCancelled    = errors.New("reservation is already cancelled")
	ErrAlreadyExpired      = errors.New("reservation is already expired")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrCancelConfirmed     = errors.New("confirmed reservation cannot be cancelled, use refund")
	ErrAlreadyReleased     = errors.New("reservation is already cancelled or expired")
	ErrNotConfirmed        = errors.New("only confirmed reservations can be refunded")
)
