package service

import (
	"context"
	"fmt"

	repository "github.com/eventseat/reservation-service/internal/database/postgres"
	"github.com/eventseat/reservation-service/internal/entity"

	"github.com/sirupsen/logrus"
)

type eventService struct {
	eventRepo       repository.EventRepository
	reservationRepo repository.ReservationRepository
	cache           EventCache
}

// NewEventService creates the event catalog service. cache may be nil when
// redis is not configured.
func NewEventService(
	eventRepo repository.EventRepository,
	reservationRepo repository.ReservationRepository,
	cache EventCache,
) EventService {
	return &eventService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		cache:           cache,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*entity.Event, error) {
	if req.TotalSeats <= 0 {
		return nil, entity.ErrInvalidSeats
	}

	event := &entity.Event{
		Title:          req.Title,
		Description:    req.Description,
		Venue:          req.Venue,
		Price:          req.Price,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"total_seats": event.TotalSeats,
	}).Info("Event created")

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	if s.cache != nil {
		if event, err := s.cache.GetEvent(ctx, id); err == nil {
			return event, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			logrus.Warnf("Failed to cache event %d: %v", id, err)
		}
	}

	return event, nil
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]*entity.Event, error) {
	events, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int64, req *UpdateEventRequest) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Price != nil {
		event.Price = *req.Price
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, id); err != nil {
			logrus.Warnf("Failed to invalidate event %d cache: %v", id, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
	}).Info("Event updated")

	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int64) error {
	count, err := s.reservationRepo.CountByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check event reservations: %w", err)
	}
	if count > 0 {
		return entity.ErrEventHasHolds
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, id); err != nil {
			logrus.Warnf("Failed to invalidate event %d cache: %v", id, err)
		}
	}

	return nil
}
