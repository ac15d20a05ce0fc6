package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type eventRepository struct {
	mu     sync.RWMutex
	nextID int64
	events []domain.StoredEvent
}

func NewEventRepository() repository.EventRepository {
	return &eventRepository{nextID: 1}
}

func (r *eventRepository) Append(ctx context.Context, eventID, eventType string, dealID int64, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, domain.StoredEvent{
		ID:         r.nextID,
		EventID:    eventID,
		EventType:  eventType,
		DealID:     dealID,
		Payload:    payload,
		RecordedOn: time.Now(),
	})
	r.nextID++
	return nil
}

func (r *eventRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.StoredEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.StoredEvent
	for _, e := range r.events {
		if e.DealID == dealID {
			out = append(out, e)
		}
	}
	return out, nil
}
