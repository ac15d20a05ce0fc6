package domain

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const (
	DealCreatedEventType   = "DealCreated"
	DealActivatedEventType = "DealActivated"
	DealCompletedEventType = "DealCompleted"
	DealDisputedEventType  = "DealDisputed"
	DealResolvedEventType  = "DealResolved"
	DealCancelledEventType = "DealCancelled"
	AssetAddedEventType    = "AssetAdded"
	AssetRemovedEventType  = "AssetRemoved"
)

// Event is a domain event emitted after a successful state transition.
// Sinks consume events fire-and-forget; the engine never depends on
// delivery succeeding.
type Event interface {
	EventType() string
	PayloadToJSON() ([]byte, error)
	Meta() EventMeta
}

// EventMeta is embedded in every event payload.
type EventMeta struct {
	EventID    string    `json:"event_id"`
	DealID     int64     `json:"deal_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Meta satisfies the Event interface for every event embedding EventMeta.
func (m EventMeta) Meta() EventMeta {
	return m
}

func NewEventMeta(dealID int64) EventMeta {
	return EventMeta{
		EventID:    uuid.NewString(),
		DealID:     dealID,
		OccurredAt: time.Now().UTC(),
	}
}

type DealCreated struct {
	EventMeta
	Renter              string `json:"renter"`
	Owner               string `json:"owner"`
	Asset               string `json:"asset"`
	AmountUnits         int64  `json:"amount_units"`
	OwnerAmountUnits    int64  `json:"owner_amount_units"`
	MarketplaceFeeUnits int64  `json:"marketplace_fee_units"`
	ItemID              string `json:"item_id"`
}

func (e DealCreated) EventType() string { return DealCreatedEventType }

func (e DealCreated) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type DealActivated struct {
	EventMeta
	Owner string `json:"owner"`
}

func (e DealActivated) EventType() string { return DealActivatedEventType }

func (e DealActivated) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type DealCompleted struct {
	EventMeta
	Owner               string `json:"owner"`
	Renter              string `json:"renter"`
	OwnerAmountUnits    int64  `json:"owner_amount_units"`
	MarketplaceFeeUnits int64  `json:"marketplace_fee_units"`
}

func (e DealCompleted) EventType() string { return DealCompletedEventType }

func (e DealCompleted) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type DealDisputed struct {
	EventMeta
	Disputer string `json:"disputer"`
}

func (e DealDisputed) EventType() string { return DealDisputedEventType }

func (e DealDisputed) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type DealResolved struct {
	EventMeta
	Arbitrator    string `json:"arbitrator"`
	FavorOwner    bool   `json:"favor_owner"`
	Winner        string `json:"winner"`
	ReleasedUnits int64  `json:"released_units"`
}

func (e DealResolved) EventType() string { return DealResolvedEventType }

func (e DealResolved) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type DealCancelled struct {
	EventMeta
	CancelledBy   string `json:"cancelled_by"`
	RefundedUnits int64  `json:"refunded_units"`
}

func (e DealCancelled) EventType() string { return DealCancelledEventType }

func (e DealCancelled) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

// StoredEvent is one audit-trail row of an emitted event.
type StoredEvent struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	DealID     int64     `json:"deal_id"`
	Payload    []byte    `json:"payload"`
	RecordedOn time.Time `json:"recorded_on"`
}

// Asset registry events carry no deal id; DealID stays zero.

type AssetAdded struct {
	EventMeta
	Code string `json:"code"`
}

func (e AssetAdded) EventType() string { return AssetAddedEventType }

func (e AssetAdded) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

type AssetRemoved struct {
	EventMeta
	Code string `json:"code"`
}

func (e AssetRemoved) EventType() string { return AssetRemovedEventType }

func (e AssetRemoved) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}
