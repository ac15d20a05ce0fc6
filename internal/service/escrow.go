package service

import (
	"context"
	"sync"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/events"
	"github.com/tobiasgatti02/Tolio-sub002/internal/ledger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
	"github.com/tobiasgatti02/Tolio-sub002/internal/utils"
)

// dealLocks serializes operations per deal id. Operations on different
// deals proceed in parallel; there is no global lock across deals.
type dealLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newDealLocks() *dealLocks {
	return &dealLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *dealLocks) acquire(dealID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[dealID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[dealID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}

type escrowService struct {
	dealRepo   repository.DealRepository
	assetRepo  repository.AssetRepository
	eventRepo  repository.EventRepository
	ledger     ledger.Adapter
	sink       events.Sink
	arbitrator string
	// marketplace is the account the fee share is credited to.
	marketplace string
	locks       *dealLocks
}

func NewEscrowService(
	dealRepo repository.DealRepository,
	assetRepo repository.AssetRepository,
	eventRepo repository.EventRepository,
	ledgerAdapter ledger.Adapter,
	sink events.Sink,
	arbitrator string,
	marketplace string,
) EscrowService {
	return &escrowService{
		dealRepo:    dealRepo,
		assetRepo:   assetRepo,
		eventRepo:   eventRepo,
		ledger:      ledgerAdapter,
		sink:        sink,
		arbitrator:  arbitrator,
		marketplace: marketplace,
		locks:       newDealLocks(),
	}
}

func (s *escrowService) CreateDeal(ctx context.Context, p CreateDealParams) (*domain.Deal, error) {
	if p.Renter == "" {
		return nil, domain.NewInvalidInput("renter", "must not be empty")
	}
	if p.Owner == "" {
		return nil, domain.NewInvalidInput("owner", "must not be empty")
	}
	if p.Owner == p.Renter {
		return nil, domain.NewInvalidInput("owner", "owner and renter must be distinct parties")
	}
	if p.AmountUnits <= 0 {
		return nil, domain.NewInvalidInput("amount", "must be positive")
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, domain.NewInvalidInput("end_time", "must be after start time")
	}
	if err := utils.ValidateFeeBps(p.FeeBps); err != nil {
		return nil, domain.NewInvalidInput("fee_bps", err.Error())
	}
	if _, err := s.assetRepo.GetByCode(ctx, p.Asset); err != nil {
		return nil, domain.NewInvalidInput("asset", "not a supported asset: "+p.Asset)
	}

	ownerUnits, feeUnits := utils.SplitAmount(p.AmountUnits, p.FeeBps)

	deal := &domain.Deal{
		Owner:               p.Owner,
		Renter:              p.Renter,
		Arbitrator:          s.arbitrator,
		Asset:               p.Asset,
		AmountUnits:         p.AmountUnits,
		MarketplaceFeeBps:   p.FeeBps,
		OwnerAmountUnits:    ownerUnits,
		MarketplaceFeeUnits: feeUnits,
		StartTime:           p.StartTime,
		EndTime:             p.EndTime,
		Status:              domain.DealStatusCreated,
		ItemID:              p.ItemID,
		Notes:               p.Notes,
	}

	// Funds move into custody before the deal exists; a failed debit
	// aborts creation with no store mutation.
	if err := s.ledger.Debit(ctx, p.Renter, p.Asset, p.AmountUnits); err != nil {
		return nil, &domain.LedgerError{Op: "debit renter", Err: err}
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		// Give the custody debit back; the deal was never recorded.
		if creditErr := s.ledger.Credit(ctx, p.Renter, p.Asset, p.AmountUnits); creditErr != nil {
			logger.Error("Failed to return custody after aborted deal creation",
				"renter", p.Renter, "amount_units", p.AmountUnits, "error", creditErr)
			return nil, &domain.LedgerError{Op: "refund renter after aborted creation", Partial: true, Err: creditErr}
		}
		return nil, err
	}

	s.sink.Emit(ctx, domain.DealCreated{
		EventMeta:           domain.NewEventMeta(deal.ID),
		Renter:              deal.Renter,
		Owner:               deal.Owner,
		Asset:               deal.Asset,
		AmountUnits:         deal.AmountUnits,
		OwnerAmountUnits:    deal.OwnerAmountUnits,
		MarketplaceFeeUnits: deal.MarketplaceFeeUnits,
		ItemID:              deal.ItemID,
	})
	return deal, nil
}

func (s *escrowService) ActivateDeal(ctx context.Context, dealID int64, caller string) error {
	lock := s.locks.acquire(dealID)
	defer lock.Unlock()

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	if caller != deal.Owner {
		return domain.ErrUnauthorized
	}
	if deal.Status != domain.DealStatusCreated {
		return &domain.InvalidStateError{DealID: dealID, Current: deal.Status, Expected: []domain.DealStatus{domain.DealStatusCreated}}
	}

	deal.Status = domain.DealStatusActive
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return err
	}

	s.sink.Emit(ctx, domain.DealActivated{
		EventMeta: domain.NewEventMeta(deal.ID),
		Owner:     deal.Owner,
	})
	return nil
}

func (s *escrowService) CancelDeal(ctx context.Context, dealID int64, caller string) error {
	lock := s.locks.acquire(dealID)
	defer lock.Unlock()

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	if !deal.IsParty(caller) {
		return domain.ErrUnauthorized
	}
	if deal.Status != domain.DealStatusCreated {
		return &domain.InvalidStateError{DealID: dealID, Current: deal.Status, Expected: []domain.DealStatus{domain.DealStatusCreated}}
	}

	deal.Status = domain.DealStatusCancelled
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return err
	}

	// Full refund, no fee deducted. The deal is already Cancelled; a
	// failed credit leaves custody holding the refund and must be
	// surfaced for reconciliation, not retried here.
	if err := s.ledger.Credit(ctx, deal.Renter, deal.Asset, deal.AmountUnits); err != nil {
		return &domain.LedgerError{DealID: dealID, Op: "refund renter", Partial: true, Err: err}
	}

	s.sink.Emit(ctx, domain.DealCancelled{
		EventMeta:     domain.NewEventMeta(deal.ID),
		CancelledBy:   caller,
		RefundedUnits: deal.AmountUnits,
	})
	return nil
}

func (s *escrowService) ConfirmReturn(ctx context.Context, dealID int64, caller string) (domain.DealStatus, error) {
	lock := s.locks.acquire(dealID)
	defer lock.Unlock()

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return "", err
	}
	if !deal.IsParty(caller) {
		return "", domain.ErrUnauthorized
	}
	if deal.Status != domain.DealStatusActive {
		return "", &domain.InvalidStateError{DealID: dealID, Current: deal.Status, Expected: []domain.DealStatus{domain.DealStatusActive}}
	}
	if deal.ConfirmedBy(caller) {
		return "", domain.ErrAlreadyConfirmed
	}

	if caller == deal.Owner {
		deal.OwnerConfirmed = true
	} else {
		deal.RenterConfirmed = true
	}

	if !deal.OwnerConfirmed || !deal.RenterConfirmed {
		if err := s.dealRepo.Update(ctx, deal); err != nil {
			return "", err
		}
		return deal.Status, nil
	}

	// Both parties confirmed: the deal completes and custody is split.
	// The completed state is persisted before the credits so a repeat
	// call can never double-pay; a credit failure after that point is a
	// partial completion the reconciler must replay exactly once.
	deal.Status = domain.DealStatusCompleted
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return "", err
	}

	if err := s.payout(ctx, deal); err != nil {
		return deal.Status, err
	}

	s.sink.Emit(ctx, domain.DealCompleted{
		EventMeta:           domain.NewEventMeta(deal.ID),
		Owner:               deal.Owner,
		Renter:              deal.Renter,
		OwnerAmountUnits:    deal.OwnerAmountUnits,
		MarketplaceFeeUnits: deal.MarketplaceFeeUnits,
	})
	return deal.Status, nil
}

// payout releases custody of a completed deal: the owner's share first,
// then the marketplace fee.
func (s *escrowService) payout(ctx context.Context, deal *domain.Deal) error {
	if err := s.ledger.Credit(ctx, deal.Owner, deal.Asset, deal.OwnerAmountUnits); err != nil {
		return &domain.LedgerError{DealID: deal.ID, Op: "credit owner", Partial: true, Err: err}
	}
	if deal.MarketplaceFeeUnits > 0 {
		if err := s.ledger.Credit(ctx, s.marketplace, deal.Asset, deal.MarketplaceFeeUnits); err != nil {
			return &domain.LedgerError{DealID: deal.ID, Op: "credit marketplace", Partial: true, Err: err}
		}
	}
	return nil
}

func (s *escrowService) ReportDispute(ctx context.Context, dealID int64, caller string) error {
	lock := s.locks.acquire(dealID)
	defer lock.Unlock()

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	if !deal.IsParty(caller) {
		return domain.ErrUnauthorized
	}
	if deal.Status != domain.DealStatusActive || deal.DisputeOpen {
		return &domain.InvalidStateError{DealID: dealID, Current: deal.Status, Expected: []domain.DealStatus{domain.DealStatusActive}}
	}

	deal.Status = domain.DealStatusDisputed
	deal.DisputeOpen = true
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return err
	}

	s.sink.Emit(ctx, domain.DealDisputed{
		EventMeta: domain.NewEventMeta(deal.ID),
		Disputer:  caller,
	})
	return nil
}

func (s *escrowService) ResolveDispute(ctx context.Context, dealID int64, caller string, favorOwner bool) error {
	lock := s.locks.acquire(dealID)
	defer lock.Unlock()

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	// Arbitrator identity is checked before the state guard so a wrong
	// caller sees Unauthorized regardless of deal state.
	if caller != deal.Arbitrator {
		return domain.ErrUnauthorized
	}
	if deal.Status != domain.DealStatusDisputed {
		return &domain.InvalidStateError{DealID: dealID, Current: deal.Status, Expected: []domain.DealStatus{domain.DealStatusDisputed}}
	}

	deal.Status = domain.DealStatusCompleted
	deal.DisputeOpen = false
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return err
	}

	winner := deal.Renter
	released := deal.AmountUnits
	if favorOwner {
		winner = deal.Owner
		released = deal.OwnerAmountUnits
		if err := s.payout(ctx, deal); err != nil {
			return err
		}
	} else {
		// The renter prevails: the gross amount goes back and the
		// marketplace fee is waived.
		if err := s.ledger.Credit(ctx, deal.Renter, deal.Asset, deal.AmountUnits); err != nil {
			return &domain.LedgerError{DealID: dealID, Op: "refund renter", Partial: true, Err: err}
		}
	}

	s.sink.Emit(ctx, domain.DealResolved{
		EventMeta:     domain.NewEventMeta(deal.ID),
		Arbitrator:    caller,
		FavorOwner:    favorOwner,
		Winner:        winner,
		ReleasedUnits: released,
	})
	return nil
}

func (s *escrowService) GetDeal(ctx context.Context, dealID int64) (*domain.Deal, error) {
	return s.dealRepo.GetByID(ctx, dealID)
}

func (s *escrowService) ListRentals(ctx context.Context, renter string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return s.dealRepo.ListByRenter(ctx, renter, status, page, pageSize)
}

func (s *escrowService) ListLendings(ctx context.Context, owner string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return s.dealRepo.ListByOwner(ctx, owner, status, page, pageSize)
}

func (s *escrowService) ListDealEvents(ctx context.Context, dealID int64) ([]domain.StoredEvent, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByDeal(ctx, dealID)
}
