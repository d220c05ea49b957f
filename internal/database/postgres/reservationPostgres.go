package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
	"github.com/lib/pq"
)

const reservationColumns = `id, event_id, user_id, seat_count, status, expires_at, confirmed_at, created_at, updated_at`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *reservationRepository) Insert(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (event_id, user_id, seat_count, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		reservation.EventID,
		reservation.UserID,
		reservation.SeatCount,
		reservation.Status,
		reservation.ExpiresAt,
		now,
		now,
	).Scan(&reservation.ID)

	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetForUpdate reads the reservation under an exclusive row lock, scoped to
// its event so a reservation id cannot be confirmed through another event's
// URL. Status re-checks after this read see committed state only.
func (r *reservationRepository) GetForUpdate(ctx context.Context, eventID, reservationID int64) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 AND event_id = $2 FOR UPDATE`

	return scanReservation(conn(ctx, r.db).QueryRowContext(ctx, query, reservationID, eventID))
}

func scanReservation(row *sql.Row) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.EventID,
		&reservation.UserID,
		&reservation.SeatCount,
		&reservation.Status,
		&reservation.ExpiresAt,
		&reservation.ConfirmedAt,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return &reservation, nil
}

func (r *reservationRepository) MarkConfirmed(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE reservations SET status = $1, confirmed_at = $2, updated_at = $3 WHERE id = $4`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, entity.ReservationStatusConfirmed, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}

	return checkAffected(result)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	query := `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrReservationNotFound
	}
	return nil
}

// FindExpiredForUpdate selects every pending reservation past its deadline
// under row locks, so the sweep and a concurrent confirm/cancel of the same
// reservation serialize on the datastore.
func (r *reservationRepository) FindExpiredForUpdate(ctx context.Context, before time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC
		FOR UPDATE
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, entity.ReservationStatusPending, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *reservationRepository) BulkUpdateStatus(ctx context.Context, ids []int64, status entity.ReservationStatus) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = ANY($3)`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, status, time.Now(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to bulk update reservation status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != int64(len(ids)) {
		return fmt.Errorf("expected to update %d reservations, updated %d", len(ids), rowsAffected)
	}

	return nil
}

func (r *reservationRepository) GetByEventID(ctx context.Context, eventID int64) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_id = $1
		ORDER BY created_at DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations by event: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *reservationRepository) GetByUserID(ctx context.Context, userID int64) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations by user: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// CountByEvent counts the reservations that still hold seats for the
// event; released history is not included.
func (r *reservationRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE event_id = $1 AND status IN ($2, $3)`

	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, query, eventID,
		entity.ReservationStatusPending, entity.ReservationStatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by event: %w", err)
	}
	return count, nil
}

func collectReservations(rows *sql.Rows) ([]*entity.Reservation, error) {
	var reservations []*entity.Reservation
	for rows.Next() {
		var reservation entity.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.EventID,
			&reservation.UserID,
			&reservation.SeatCount,
			&reservation.Status,
			&reservation.ExpiresAt,
			&reservation.ConfirmedAt,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}
