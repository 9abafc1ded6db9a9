package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the report pages onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/ledger/{owner}/{id}", h.handleLedger)
	r.Get("/outstanding", h.handleOutstanding)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/ledger/{owner}/{id}/export.csv", h.handleExport)
	})
}
