package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventseat/reservation-service/internal/entity"

	"github.com/go-redis/redis/v8"
)

// EventCache keeps a short-lived copy of event rows in front of postgres.
// Cached availability is advisory only: the engine always re-reads the
// inventory row under lock before mutating it.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{
		client: client,
		ttl:    ttl,
	}
}

func eventKey(id int64) string {
	return fmt.Sprintf("event:%d", id)
}

func (c *EventCache) SetEvent(ctx context.Context, event *entity.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, eventKey(event.ID), data, c.ttl).Err()
}

func (c *EventCache) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	data, err := c.client.Get(ctx, eventKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var event entity.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, err
	}

	return &event, nil
}

func (c *EventCache) InvalidateEvent(ctx context.Context, id int64) error {
	return c.client.Del(ctx, eventKey(id)).Err()
}
