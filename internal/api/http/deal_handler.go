package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/service"
)

// DealHandler exposes the deal lifecycle over HTTP. The caller identity
// always comes from the authenticated token, never from the request body.
type DealHandler struct {
	escrow        service.EscrowService
	gate          *service.ArbitrationGate
	defaultFeeBps int32
}

func NewDealHandler(escrow service.EscrowService, gate *service.ArbitrationGate, defaultFeeBps int32) *DealHandler {
	return &DealHandler{escrow: escrow, gate: gate, defaultFeeBps: defaultFeeBps}
}

type createDealRequest struct {
	Owner       string    `json:"owner"`
	Asset       string    `json:"asset"`
	AmountUnits int64     `json:"amount_units"`
	FeeBps      *int32    `json:"fee_bps,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	ItemID      string    `json:"item_id"`
	Notes       string    `json:"notes"`
}

func (h *DealHandler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	renter, ok := PartyFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "missing party identity")
		return
	}

	var req createDealRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	params := service.CreateDealParams{
		Renter:      renter,
		Owner:       req.Owner,
		Asset:       req.Asset,
		AmountUnits: req.AmountUnits,
		FeeBps:      h.defaultFeeBps,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ItemID:      req.ItemID,
		Notes:       req.Notes,
	}
	if req.FeeBps != nil {
		params.FeeBps = *req.FeeBps
	}

	deal, err := h.escrow.CreateDeal(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, deal)
}

func (h *DealHandler) ActivateDeal(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.escrow.ActivateDeal)
}

func (h *DealHandler) CancelDeal(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.escrow.CancelDeal)
}

func (h *DealHandler) ReportDispute(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.escrow.ReportDispute)
}

// transition runs a caller+deal-id operation and responds with the
// refreshed deal.
func (h *DealHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, dealID int64, caller string) error) {
	caller, dealID, ok := h.callerAndDeal(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), dealID, caller); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondWithDeal(w, r, dealID)
}

type confirmReturnResponse struct {
	DealID int64             `json:"deal_id"`
	Status domain.DealStatus `json:"status"`
}

func (h *DealHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	caller, dealID, ok := h.callerAndDeal(w, r)
	if !ok {
		return
	}
	status, err := h.escrow.ConfirmReturn(r.Context(), dealID, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, confirmReturnResponse{DealID: dealID, Status: status})
}

type resolveDisputeRequest struct {
	FavorOwner bool `json:"favor_owner"`
}

func (h *DealHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	caller, dealID, ok := h.callerAndDeal(w, r)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	if err := h.gate.ResolveDispute(r.Context(), dealID, caller, req.FavorOwner); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondWithDeal(w, r, dealID)
}

func (h *DealHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	_, dealID, ok := h.callerAndDeal(w, r)
	if !ok {
		return
	}
	h.respondWithDeal(w, r, dealID)
}

type listDealsResponse struct {
	Deals    []domain.Deal `json:"deals"`
	Total    int32         `json:"total"`
	Page     int32         `json:"page"`
	PageSize int32         `json:"page_size"`
}

// ListDeals returns the caller's deals; role=renter lists rentals,
// role=owner lists lendings.
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	caller, ok := PartyFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "missing party identity")
		return
	}

	status := r.URL.Query().Get("status")
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	var (
		deals []domain.Deal
		total int32
		err   error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "", "renter":
		deals, total, err = h.escrow.ListRentals(r.Context(), caller, status, page, pageSize)
	case "owner":
		deals, total, err = h.escrow.ListLendings(r.Context(), caller, status, page, pageSize)
	default:
		jsonError(w, http.StatusBadRequest, "invalid_input", "role must be renter or owner")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, listDealsResponse{Deals: deals, Total: total, Page: page, PageSize: pageSize})
}

type storedEventResponse struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	DealID     int64           `json:"deal_id"`
	Payload    json.RawMessage `json:"payload"`
	RecordedOn time.Time       `json:"recorded_on"`
}

func (h *DealHandler) ListDealEvents(w http.ResponseWriter, r *http.Request) {
	_, dealID, ok := h.callerAndDeal(w, r)
	if !ok {
		return
	}
	events, err := h.escrow.ListDealEvents(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]storedEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, storedEventResponse{
			EventID:    ev.EventID,
			EventType:  ev.EventType,
			DealID:     ev.DealID,
			Payload:    json.RawMessage(ev.Payload),
			RecordedOn: ev.RecordedOn,
		})
	}
	jsonResponse(w, http.StatusOK, out)
}

func (h *DealHandler) respondWithDeal(w http.ResponseWriter, r *http.Request, dealID int64) {
	deal, err := h.escrow.GetDeal(r.Context(), dealID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, deal)
}

func (h *DealHandler) callerAndDeal(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	caller, ok := PartyFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "missing party identity")
		return "", 0, false
	}
	dealID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || dealID <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid_input", "invalid deal id")
		return "", 0, false
	}
	return caller, dealID, true
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
