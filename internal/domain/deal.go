package domain

import "time"

type DealStatus string

const (
	DealStatusCreated   DealStatus = "CREATED"
	DealStatusActive    DealStatus = "ACTIVE"
	DealStatusCompleted DealStatus = "COMPLETED"
	DealStatusDisputed  DealStatus = "DISPUTED"
	DealStatusCancelled DealStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are possible.
func (s DealStatus) IsTerminal() bool {
	return s == DealStatusCompleted || s == DealStatusCancelled
}

// Deal is one escrowed rental transaction between a renter and an owner.
// Amounts are integers in the smallest unit of the deal's asset.
type Deal struct {
	ID         int64  `json:"id"`
	Owner      string `json:"owner"`
	Renter     string `json:"renter"`
	Arbitrator string `json:"arbitrator"`
	Asset      string `json:"asset"`
	// Fee snapshot fields — captured at deal creation time.
	// Completion pays out these stored amounts, never a recomputation,
	// so a later fee-rate change cannot alter an in-flight deal.
	MarketplaceFeeBps   int32      `json:"marketplace_fee_bps"`
	AmountUnits         int64      `json:"amount_units"`
	OwnerAmountUnits    int64      `json:"owner_amount_units"`
	MarketplaceFeeUnits int64      `json:"marketplace_fee_units"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             time.Time  `json:"end_time"`
	Status              DealStatus `json:"status"`
	OwnerConfirmed      bool       `json:"owner_confirmed"`
	RenterConfirmed     bool       `json:"renter_confirmed"`
	DisputeOpen         bool       `json:"dispute_open"`
	ItemID              string     `json:"item_id"`
	Notes               string     `json:"notes"`
	CreatedOn           time.Time  `json:"created_on"`
	UpdatedOn           time.Time  `json:"updated_on"`
}

// IsParty reports whether the caller is the deal's owner or renter.
func (d *Deal) IsParty(caller string) bool {
	return caller == d.Owner || caller == d.Renter
}

// ConfirmedBy reports whether the given party already confirmed the return.
func (d *Deal) ConfirmedBy(caller string) bool {
	switch caller {
	case d.Owner:
		return d.OwnerConfirmed
	case d.Renter:
		return d.RenterConfirmed
	}
	return false
}
