package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"
)

// fakeStore is a shared in-memory backing for the repository fakes, so the
// event and reservation fakes see one consistent dataset the way the two
// postgres repositories share one database. txMu is held for the whole of
// every WithTx body, standing in for the event row lock: two transactions
// on the store serialize the way two FOR UPDATE readers of the same row do.
type fakeStore struct {
	txMu          sync.Mutex
	events        map[int64]*entity.Event
	reservations  map[int64]*entity.Reservation
	nextEventID   int64
	nextResID     int64
	invalidations []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       make(map[int64]*entity.Event),
		reservations: make(map[int64]*entity.Reservation),
	}
}

func (s *fakeStore) addEvent(title string, totalSeats, availableSeats int) *entity.Event {
	s.nextEventID++
	event := &entity.Event{
		ID:             s.nextEventID,
		Title:          title,
		Price:          1500,
		TotalSeats:     totalSeats,
		AvailableSeats: availableSeats,
	}
	s.events[event.ID] = event
	return event
}

func (s *fakeStore) addReservation(eventID int64, seats int, status entity.ReservationStatus, expiresAt time.Time) *entity.Reservation {
	s.nextResID++
	reservation := &entity.Reservation{
		ID:        s.nextResID,
		EventID:   eventID,
		SeatCount: seats,
		Status:    status,
		ExpiresAt: expiresAt,
	}
	s.reservations[reservation.ID] = reservation
	return reservation
}

// seatsInFlight sums the seat counts of reservations that still hold seats
// for the event, for checking that debits and credits balance.
func (s *fakeStore) seatsInFlight(eventID int64) int {
	total := 0
	for _, r := range s.reservations {
		if r.EventID == eventID && r.Status.HoldsSeats() {
			total += r.SeatCount
		}
	}
	return total
}

type fakeEventRepo struct {
	store *fakeStore
}

func (r *fakeEventRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	return fn(ctx)
}

func (r *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.store.nextEventID++
	event.ID = r.store.nextEventID
	stored := *event
	r.store.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	event, ok := r.store.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) GetAll(_ context.Context) ([]*entity.Event, error) {
	ids := make([]int64, 0, len(r.store.events))
	for id := range r.store.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	events := make([]*entity.Event, 0, len(ids))
	for _, id := range ids {
		copied := *r.store.events[id]
		events = append(events, &copied)
	}
	return events, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *entity.Event) error {
	stored, ok := r.store.events[event.ID]
	if !ok {
		return entity.ErrEventNotFound
	}
	stored.Title = event.Title
	stored.Description = event.Description
	stored.Venue = event.Venue
	stored.Price = event.Price
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.events[id]; !ok {
		return entity.ErrEventNotFound
	}
	delete(r.store.events, id)
	return nil
}

func (r *fakeEventRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEventRepo) AddAvailableSeats(_ context.Context, id int64, delta int) error {
	event, ok := r.store.events[id]
	if !ok {
		return entity.ErrEventNotFound
	}
	event.AvailableSeats += delta
	return nil
}

type fakeReservationRepo struct {
	store *fakeStore
}

func (r *fakeReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	return fn(ctx)
}

func (r *fakeReservationRepo) Insert(_ context.Context, reservation *entity.Reservation) error {
	r.store.nextResID++
	reservation.ID = r.store.nextResID
	stored := *reservation
	r.store.reservations[reservation.ID] = &stored
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id int64) (*entity.Reservation, error) {
	reservation, ok := r.store.reservations[id]
	if !ok {
		return nil, entity.ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (r *fakeReservationRepo) GetByEventID(_ context.Context, eventID int64) ([]*entity.Reservation, error) {
	return r.collect(func(res *entity.Reservation) bool {
		return res.EventID == eventID
	}), nil
}

func (r *fakeReservationRepo) GetByUserID(_ context.Context, userID int64) ([]*entity.Reservation, error) {
	return r.collect(func(res *entity.Reservation) bool {
		return res.UserID != nil && *res.UserID == userID
	}), nil
}

func (r *fakeReservationRepo) CountByEvent(_ context.Context, eventID int64) (int, error) {
	count := 0
	for _, res := range r.store.reservations {
		if res.EventID == eventID && res.Status.HoldsSeats() {
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) MarkConfirmed(_ context.Context, id int64, at time.Time) error {
	reservation, ok := r.store.reservations[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	reservation.Status = entity.ReservationStatusConfirmed
	confirmedAt := at
	reservation.ConfirmedAt = &confirmedAt
	return nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id int64, status entity.ReservationStatus) error {
	reservation, ok := r.store.reservations[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	reservation.Status = status
	return nil
}

func (r *fakeReservationRepo) BulkUpdateStatus(_ context.Context, ids []int64, status entity.ReservationStatus) error {
	for _, id := range ids {
		if err := r.UpdateStatus(context.Background(), id, status); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeReservationRepo) GetForUpdate(_ context.Context, eventID, reservationID int64) (*entity.Reservation, error) {
	reservation, ok := r.store.reservations[reservationID]
	if !ok || reservation.EventID != eventID {
		return nil, entity.ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (r *fakeReservationRepo) FindExpiredForUpdate(_ context.Context, before time.Time) ([]*entity.Reservation, error) {
	return r.collect(func(res *entity.Reservation) bool {
		return res.Status == entity.ReservationStatusPending && res.ExpiresAt.Before(before)
	}), nil
}

func (r *fakeReservationRepo) collect(match func(*entity.Reservation) bool) []*entity.Reservation {
	ids := make([]int64, 0, len(r.store.reservations))
	for id, res := range r.store.reservations {
		if match(res) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*entity.Reservation, 0, len(ids))
	for _, id := range ids {
		copied := *r.store.reservations[id]
		out = append(out, &copied)
	}
	return out
}

type fakeEventCache struct {
	store *fakeStore
	mu    sync.Mutex
}

func (c *fakeEventCache) GetEvent(_ context.Context, _ int64) (*entity.Event, error) {
	return nil, entity.ErrEventNotFound
}

func (c *fakeEventCache) SetEvent(_ context.Context, _ *entity.Event) error {
	return nil
}

func (c *fakeEventCache) InvalidateEvent(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.invalidations = append(c.store.invalidations, id)
	return nil
}

// stepClock is a clock the test can move forward between operations.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
