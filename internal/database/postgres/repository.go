package repository

import (
	"context"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
)

type EventRepository interface {
	// WithTx runs fn inside one transaction; repository calls made from fn
	// join it via the context.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	GetAll(ctx context.Context) ([]*entity.Event, error)
	// Update rewrites the descriptive columns. Seat counters are owned by
	// the reservation engine and change only through AddAvailableSeats.
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id int64) error

	// Locking operations for concurrency control. Only meaningful inside a
	// WithTx transaction: the row lock is released at commit or rollback.
	GetForUpdate(ctx context.Context, id int64) (*entity.Event, error)
	AddAvailableSeats(ctx context.Context, id int64, delta int) error
}

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Insert(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	GetByEventID(ctx context.Context, eventID int64) ([]*entity.Reservation, error)
	GetByUserID(ctx context.Context, userID int64) ([]*entity.Reservation, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)

	// Status transitions
	MarkConfirmed(ctx context.Context, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error
	BulkUpdateStatus(ctx context.Context, ids []int64, status entity.ReservationStatus) error

	// Locking operations for concurrency control
	GetForUpdate(ctx context.Context, eventID, reservationID int64) (*entity.Reservation, error)
	FindExpiredForUpdate(ctx context.Context, before time.Time) ([]*entity.Reservation, error)
}
