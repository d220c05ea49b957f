package repository_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventseat/reservation-service/internal/clock"
	repository "github.com/eventseat/reservation-service/internal/database/postgres"
	"github.com/eventseat/reservation-service/internal/entity"
	"github.com/eventseat/reservation-service/internal/service"
	"github.com/eventseat/reservation-service/pkg/postgres"
)

const defaultTestDSN = "host=localhost port=5432 user=postgres password=postgres dbname=reservations_test sslmode=disable"

// newTestDB connects to the postgres instance named by TEST_DATABASE_DSN
// (or a local default), applies the migrations, and starts the test from
// empty tables. Tests are skipped when no database is reachable.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping postgres integration tests: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, postgres.RunMigrations(db))

	_, err = db.Exec(`TRUNCATE reservations, events RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

func TestEventRepository_Integration(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewEventRepository(db)
	ctx := context.Background()

	event := &entity.Event{
		Title:          "Concert",
		Description:    "Opening night",
		Venue:          "Main Hall",
		Price:          1500,
		TotalSeats:     100,
		AvailableSeats: 100,
	}
	require.NoError(t, repo.Create(ctx, event))
	require.NotZero(t, event.ID)

	// The round-trip must scan every column, price included, back into
	// the struct the engine works with.
	got, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Concert", got.Title)
	assert.Equal(t, int64(1500), got.Price)
	assert.Equal(t, 100, got.AvailableSeats)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	err = repo.WithTx(ctx, func(txCtx context.Context) error {
		locked, err := repo.GetForUpdate(txCtx, event.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1500), locked.Price)
		return repo.AddAvailableSeats(txCtx, event.ID, -4)
	})
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 96, got.AvailableSeats)
}

func TestCreateHold_RowLockContention_Integration(t *testing.T) {
	db := newTestDB(t)
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	ctx := context.Background()

	event := &entity.Event{Title: "Small Room", TotalSeats: 10, AvailableSeats: 5}
	require.NoError(t, eventRepo.Create(ctx, event))

	svc := service.NewReservationService(
		eventRepo,
		reservationRepo,
		nil,
		clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		service.ReservationConfig{HoldDuration: 10 * time.Minute, MaxSeatsPerReservation: 10},
	)

	// Two 3-seat holds race for 5 seats; the event row lock must
	// serialize them so exactly one wins and the final count is 2.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateHold(ctx, &service.CreateHoldRequest{EventID: event.ID, SeatCount: 3})
		}(i)
	}
	wg.Wait()

	var rejected int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, entity.ErrInsufficientSeats)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)

	got, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)

	count, err := reservationRepo.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
