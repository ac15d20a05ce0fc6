package repository

import (
	"context"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
)

// DealRepository owns the canonical set of deal records. The escrow
// service is the only writer; everything else reads projections.
type DealRepository interface {
	// Create assigns the next monotonic id and stores the deal.
	Create(ctx context.Context, deal *domain.Deal) error
	GetByID(ctx context.Context, id int64) (*domain.Deal, error)
	Update(ctx context.Context, deal *domain.Deal) error
	ListByRenter(ctx context.Context, renter string, status string, page, pageSize int32) ([]domain.Deal, int32, error)
	ListByOwner(ctx context.Context, owner string, status string, page, pageSize int32) ([]domain.Deal, int32, error)
	// ListOverdueActive returns active deals whose end time has passed,
	// for the reminder sweep. The sweep never mutates deal state.
	ListOverdueActive(ctx context.Context) ([]domain.Deal, error)
}

type AssetRepository interface {
	Add(ctx context.Context, asset *domain.Asset) error
	Remove(ctx context.Context, code string) error
	GetByCode(ctx context.Context, code string) (*domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
}

// EventRepository appends emitted domain events as an audit trail.
type EventRepository interface {
	Append(ctx context.Context, eventID, eventType string, dealID int64, payload []byte) error
	ListByDeal(ctx context.Context, dealID int64) ([]domain.StoredEvent, error)
}
