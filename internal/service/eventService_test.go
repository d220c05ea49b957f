package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventseat/reservation-service/internal/entity"
)

func newTestEventService(store *fakeStore) EventService {
	return NewEventService(
		&fakeEventRepo{store: store},
		&fakeReservationRepo{store: store},
		&fakeEventCache{store: store},
	)
}

func TestCreateEvent(t *testing.T) {
	t.Run("opens the full inventory", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestEventService(store)

		event, err := svc.CreateEvent(context.Background(), &CreateEventRequest{
			Title:      "Concert",
			Venue:      "Main Hall",
			Price:      2500,
			TotalSeats: 300,
		})
		require.NoError(t, err)

		assert.NotZero(t, event.ID)
		assert.Equal(t, 300, event.TotalSeats)
		assert.Equal(t, 300, event.AvailableSeats)
		assert.Equal(t, 0, event.ReservedSeats())
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestEventService(store)

		for _, seats := range []int{0, -5} {
			_, err := svc.CreateEvent(context.Background(), &CreateEventRequest{Title: "Concert", TotalSeats: seats})
			assert.ErrorIs(t, err, entity.ErrInvalidSeats)
		}
		assert.Empty(t, store.events)
	})
}

func TestGetEvent(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent("Concert", 100, 80)
	svc := newTestEventService(store)

	got, err := svc.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, 20, got.ReservedSeats())

	_, err = svc.GetEvent(context.Background(), 42)
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestGetAllEvents(t *testing.T) {
	store := newFakeStore()
	first := store.addEvent("Concert A", 100, 100)
	second := store.addEvent("Concert B", 50, 50)
	svc := newTestEventService(store)

	events, err := svc.GetAllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
}

func TestUpdateEvent(t *testing.T) {
	strVal := func(s string) *string { return &s }

	t.Run("applies only the provided fields", func(t *testing.T) {
		store := newFakeStore()
		event := store.addEvent("Concert", 100, 80)
		svc := newTestEventService(store)

		newPrice := int64(3000)
		updated, err := svc.UpdateEvent(context.Background(), event.ID, &UpdateEventRequest{
			Title: strVal("Renamed Concert"),
			Price: &newPrice,
		})
		require.NoError(t, err)

		assert.Equal(t, "Renamed Concert", updated.Title)
		assert.Equal(t, int64(3000), updated.Price)
		assert.Equal(t, "Renamed Concert", store.events[event.ID].Title)
		assert.Equal(t, int64(3000), store.events[event.ID].Price)
		assert.Contains(t, store.invalidations, event.ID)
	})

	t.Run("seat counters stay untouched", func(t *testing.T) {
		store := newFakeStore()
		event := store.addEvent("Concert", 100, 80)
		svc := newTestEventService(store)

		_, err := svc.UpdateEvent(context.Background(), event.ID, &UpdateEventRequest{Venue: strVal("Side Hall")})
		require.NoError(t, err)

		assert.Equal(t, 100, store.events[event.ID].TotalSeats)
		assert.Equal(t, 80, store.events[event.ID].AvailableSeats)
	})

	t.Run("unknown event", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestEventService(store)

		_, err := svc.UpdateEvent(context.Background(), 42, &UpdateEventRequest{Title: strVal("Renamed")})
		assert.ErrorIs(t, err, entity.ErrEventNotFound)
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("deletes an event without live reservations", func(t *testing.T) {
		store := newFakeStore()
		event := store.addEvent("Concert", 100, 100)
		store.addReservation(event.ID, 3, entity.ReservationStatusCancelled, time.Now())
		svc := newTestEventService(store)

		require.NoError(t, svc.DeleteEvent(context.Background(), event.ID))
		assert.Empty(t, store.events)
		assert.Contains(t, store.invalidations, event.ID)
	})

	t.Run("refuses while holds or confirmations exist", func(t *testing.T) {
		store := newFakeStore()
		event := store.addEvent("Concert", 100, 97)
		store.addReservation(event.ID, 3, entity.ReservationStatusPending, time.Now().Add(time.Minute))
		svc := newTestEventService(store)

		err := svc.DeleteEvent(context.Background(), event.ID)
		assert.ErrorIs(t, err, entity.ErrEventHasHolds)
		assert.Len(t, store.events, 1)
	})

	t.Run("unknown event", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestEventService(store)

		err := svc.DeleteEvent(context.Background(), 42)
		assert.ErrorIs(t, err, entity.ErrEventNotFound)
	})
}
