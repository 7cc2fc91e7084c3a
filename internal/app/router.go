package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/estimate"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/finance"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/observability"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/reports"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
	"github.com/nandy235/wine-shop-inventory-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	CatalogHandler  *catalog.Handler
	StockHandler    *stock.Handler
	FinanceHandler  *finance.Handler
	EstimateHandler *estimate.Handler
	ReportsHandler  *reports.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults. Routes under
// /api/shop carry a shop scope taken from the X-Shop-ID header, which the
// upstream gateway sets after authentication.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/master-brands", params.CatalogHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(shared.ShopScope)
			r.Route("/shop/stock", params.StockHandler.MountRoutes)
			r.Route("/shop/income-expenses", params.FinanceHandler.MountRoutes)
			r.Route("/shop/indent-estimate", params.EstimateHandler.MountRoutes)
			r.Route("/shop/reports", params.ReportsHandler.MountRoutes)
		})

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
