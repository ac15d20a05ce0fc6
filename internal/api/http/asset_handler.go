package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/service"
)

// AssetHandler exposes the supported-asset registry. Mutations sit
// behind the admin-key middleware; listing is open to any
// authenticated party.
type AssetHandler struct {
	assets service.AssetService
}

func NewAssetHandler(assets service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

type addAssetRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
}

func (h *AssetHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	asset := &domain.Asset{Code: req.Code, Name: req.Name, Decimals: req.Decimals}
	if err := h.assets.AddAsset(r.Context(), asset); err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, asset)
}

func (h *AssetHandler) RemoveAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.assets.RemoveAsset(r.Context(), mux.Vars(r)["code"]); err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}

func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.ListAssets(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, assets)
}
