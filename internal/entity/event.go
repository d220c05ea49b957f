package entity

import (
	"time"
)

type Event struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Venue          string    `json:"venue" db:"venue"`
	Price          int64     `json:"price" db:"price"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ReservedSeats is the number of seats currently debited from availability.
func (e *Event) ReservedSeats() int {
	return e.TotalSeats - e.AvailableSeats
}
