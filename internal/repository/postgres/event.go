package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, eventID, eventType string, dealID int64, payload []byte) error {
	query := `INSERT INTO deal_events (event_id, event_type, deal_id, payload, recorded_on) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, eventID, eventType, dealID, payload, time.Now())
	return err
}

func (r *eventRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.StoredEvent, error) {
	query := `SELECT id, event_id, event_type, deal_id, payload, recorded_on
	          FROM deal_events WHERE deal_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.StoredEvent
	for rows.Next() {
		var e domain.StoredEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.DealID, &e.Payload, &e.RecordedOn); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
