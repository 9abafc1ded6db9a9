package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
	"github.com/odyssey-erp/ledgerview/internal/platform/httpx"
)

// DataService is the contract the JSON handler depends on.
type DataService interface {
	Ledger(ctx context.Context, owner ledger.Owner, ownerID int64) ([]ledger.Entry, error)
	Outstanding(ctx context.Context) ([]outstanding.Summary, error)
	Totals(ctx context.Context) (Totals, error)
}

// Handler serves the backend JSON collections.
type Handler struct {
	logger  *slog.Logger
	service DataService
}

// NewHandler constructs the JSON handler.
func NewHandler(logger *slog.Logger, service DataService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the collection endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/ledger/{owner}/{id}", h.handleLedger)
	r.Get("/outstanding", h.handleOutstanding)
	r.Get("/outstanding/totals", h.handleTotals)
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	owner, ok := ledger.ParseOwner(chi.URLParam(r, "owner"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("unknown ledger owner: %w", httpx.ErrNotFound))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("invalid id: %w", httpx.ErrValidation))
		return
	}
	entries, err := h.service.Ledger(r.Context(), owner, id)
	if err != nil {
		h.respond(w, "load ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("overdue_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.RespondError(w, fmt.Errorf("invalid overdue_days: %w", httpx.ErrValidation))
			return
		}
		days = parsed
	}
	rows, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.respond(w, "load outstanding", err)
		return
	}
	httpx.JSON(w, http.StatusOK, outstanding.Overdue(rows, days))
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context())
	if err != nil {
		h.respond(w, "load totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) respond(w http.ResponseWriter, action string, err error) {
	if httpx.Status(err) >= http.StatusInternalServerError {
		h.logger.Error(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
