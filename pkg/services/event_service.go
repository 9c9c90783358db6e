package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/event"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
)

// EventService manages the durable event log backing WebSocket catch-up
type EventService struct {
	client *ent.Client
}

// NewEventService creates a new EventService
func NewEventService(client *ent.Client) *EventService {
	return &EventService{client: client}
}

// CreateEvent appends an event row and returns it with the assigned id
func (s *EventService) CreateEvent(httpCtx context.Context, channel string, payload map[string]any) (*ent.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt, err := s.client.Event.Create().
		SetChannel(channel).
		SetPayload(payload).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return evt, nil
}

// GetEvent retrieves a single event row by id
func (s *EventService) GetEvent(ctx context.Context, id int64) (*ent.Event, error) {
	evt, err := s.client.Event.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return evt, nil
}

// GetEventsAfter retrieves events on a channel after the given id, oldest
// first, capped at limit. Used for WebSocket catch-up and polling fallback.
func (s *EventService) GetEventsAfter(ctx context.Context, channel string, afterID int64, limit int) ([]*ent.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	events, err := s.client.Event.Query().
		Where(
			event.ChannelEQ(channel),
			event.IDGT(afterID),
		).
		Order(ent.Asc(event.FieldID)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return events, nil
}

// GetCatchupEvents implements events.CatchupQuerier for the WebSocket hub.
func (s *EventService) GetCatchupEvents(ctx context.Context, channel string, sinceID int64, limit int) ([]events.CatchupEvent, error) {
	rows, err := s.GetEventsAfter(ctx, channel, sinceID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]events.CatchupEvent, len(rows))
	for i, evt := range rows {
		result[i] = events.CatchupEvent{
			ID:      evt.ID,
			Payload: evt.Payload,
		}
	}
	return result, nil
}

// DeleteEventsForChannel removes all events on a channel. Called once a
// session is terminal and the grace period for connected clients passed.
func (s *EventService) DeleteEventsForChannel(ctx context.Context, channel string) (int, error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := s.client.Event.Delete().
		Where(event.ChannelEQ(channel)).
		Exec(writeCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete channel events: %w", err)
	}

	return count, nil
}

// DeleteEventsBefore removes events older than the retention window
func (s *EventService) DeleteEventsBefore(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)

	writeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.client.Event.Delete().
		Where(event.CreatedAtLT(cutoff)).
		Exec(writeCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired events: %w", err)
	}

	return count, nil
}
