package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (title, description, venue, price, total_seats, available_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Venue,
		event.Price,
		event.TotalSeats,
		event.AvailableSeats,
		now,
		now,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT id, title, description, venue, price, total_seats, available_seats, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	return r.scanEvent(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetForUpdate reads the event under an exclusive row lock. Every writer of
// available_seats must go through this read so that the availability check
// and the seat mutation are serialized per event.
func (r *eventRepository) GetForUpdate(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT id, title, description, venue, price, total_seats, available_seats, created_at, updated_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanEvent(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) scanEvent(row *sql.Row) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Venue,
		&event.Price,
		&event.TotalSeats,
		&event.AvailableSeats,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*entity.Event, error) {
	query := `
		SELECT id, title, description, venue, price, total_seats, available_seats, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var event entity.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Venue,
			&event.Price,
			&event.TotalSeats,
			&event.AvailableSeats,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, venue = $3, price = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now()
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Venue,
		event.Price,
		now,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	event.UpdatedAt = now
	return nil
}

// AddAvailableSeats moves available_seats by delta (negative for a hold,
// positive for a release). The caller must already hold the row lock via
// GetForUpdate inside the same transaction.
func (r *eventRepository) AddAvailableSeats(ctx context.Context, id int64, delta int) error {
	query := `UPDATE events SET available_seats = available_seats + $1, updated_at = $2 WHERE id = $3`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update available seats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}
