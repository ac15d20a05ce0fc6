package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tobiasgatti02/Tolio-sub002/internal/security"
)

// NewRouter wires the API surface. All /api/v1 routes require a bearer
// token; asset registry mutations additionally require the admin key.
func NewRouter(deals *DealHandler, assets *AssetHandler, tm security.TokenManager, admin *security.AdminKeyChecker) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))

	api.HandleFunc("/deals", deals.CreateDeal).Methods(http.MethodPost)
	api.HandleFunc("/deals", deals.ListDeals).Methods(http.MethodGet)
	api.HandleFunc("/deals/{id:[0-9]+}", deals.GetDeal).Methods(http.MethodGet)
	api.HandleFunc("/deals/{id:[0-9]+}/activate", deals.ActivateDeal).Methods(http.MethodPost)
	api.HandleFunc("/deals/{id:[0-9]+}/cancel", deals.CancelDeal).Methods(http.MethodPost)
	api.HandleFunc("/deals/{id:[0-9]+}/confirm-return", deals.ConfirmReturn).Methods(http.MethodPost)
	api.HandleFunc("/deals/{id:[0-9]+}/dispute", deals.ReportDispute).Methods(http.MethodPost)
	api.HandleFunc("/deals/{id:[0-9]+}/resolve", deals.ResolveDispute).Methods(http.MethodPost)
	api.HandleFunc("/deals/{id:[0-9]+}/events", deals.ListDealEvents).Methods(http.MethodGet)

	api.HandleFunc("/assets", assets.ListAssets).Methods(http.MethodGet)

	adminAPI := api.PathPrefix("/admin").Subrouter()
	adminAPI.Use(AdminKeyMiddleware(admin))
	adminAPI.HandleFunc("/assets", assets.AddAsset).Methods(http.MethodPost)
	adminAPI.HandleFunc("/assets/{code}", assets.RemoveAsset).Methods(http.MethodDelete)

	return r
}
