package service

import (
	"context"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
)

// CreateDealParams carries the renter's deal-creation request. The renter
// is the caller; the surrounding application layer has already
// authenticated it and mapped it to a party identifier.
type CreateDealParams struct {
	Renter      string
	Owner       string
	Asset       string
	AmountUnits int64
	FeeBps      int32
	StartTime   time.Time
	EndTime     time.Time
	ItemID      string
	Notes       string
}

// EscrowService is the deal state machine. All mutation of deals goes
// through it; operations on the same deal id are serialized.
type EscrowService interface {
	CreateDeal(ctx context.Context, params CreateDealParams) (*domain.Deal, error)
	ActivateDeal(ctx context.Context, dealID int64, caller string) error
	CancelDeal(ctx context.Context, dealID int64, caller string) error
	// ConfirmReturn returns the resulting status so the caller can tell
	// "still active" from "now completed".
	ConfirmReturn(ctx context.Context, dealID int64, caller string) (domain.DealStatus, error)
	ReportDispute(ctx context.Context, dealID int64, caller string) error
	ResolveDispute(ctx context.Context, dealID int64, caller string, favorOwner bool) error
	GetDeal(ctx context.Context, dealID int64) (*domain.Deal, error)
	ListRentals(ctx context.Context, renter string, status string, page, pageSize int32) ([]domain.Deal, int32, error)
	ListLendings(ctx context.Context, owner string, status string, page, pageSize int32) ([]domain.Deal, int32, error)
	ListDealEvents(ctx context.Context, dealID int64) ([]domain.StoredEvent, error)
}

// AssetService manages the registry of assets deals may be denominated in.
type AssetService interface {
	AddAsset(ctx context.Context, asset *domain.Asset) error
	RemoveAsset(ctx context.Context, code string) error
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	IsSupported(ctx context.Context, code string) (bool, error)
}

// EmailService sends operational notifications derived from domain events.
type EmailService interface {
	SendDisputeAlert(ctx context.Context, dealID int64, disputer string) error
	SendResolutionNotice(ctx context.Context, dealID int64, winner string, releasedUnits int64) error
	SendOverdueReminder(ctx context.Context, deal *domain.Deal) error
}
