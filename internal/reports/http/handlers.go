// Package reporthttp serves the ledger and outstanding-balance report pages.
package reporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledgerview/internal/disclosure"
	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
	"github.com/odyssey-erp/ledgerview/internal/table"
	"github.com/odyssey-erp/ledgerview/internal/view"
)

// Source reads backend collections.
type Source interface {
	Ledger(ctx context.Context, owner ledger.Owner, id int64) ([]ledger.Entry, error)
	Outstanding(ctx context.Context) ([]outstanding.Summary, error)
}

// FormatErrorRecorder counts cells that rendered empty.
type FormatErrorRecorder interface {
	ObserveFormatError(table, column string)
}

// Options configures the report pages.
type Options struct {
	Formatter *format.Formatter
	Policy    disclosure.Policy
	Links     outstanding.LinkTemplates
	PageSize  int
	Metrics   FormatErrorRecorder
}

// Handler renders report pages from one backend read per view.
type Handler struct {
	logger    *slog.Logger
	source    Source
	templates *view.Engine
	opts      Options
}

// NewHandler constructs the report handler.
func NewHandler(logger *slog.Logger, source Source, templates *view.Engine, opts Options) *Handler {
	if opts.Formatter == nil {
		opts.Formatter = format.New(format.EnvironmentLocale())
	}
	if opts.PageSize <= 0 {
		opts.PageSize = table.DefaultPageSize
	}
	return &Handler{logger: logger, source: source, templates: templates, opts: opts}
}

type disclosureView struct {
	Open      bool
	Body      template.HTML
	CloseHref string
}

type totalView struct {
	Amount   string
	Accounts int
	Skipped  int
}

type reportPage struct {
	Table       table.View
	Disclosure  disclosureView
	ExportHref  string
	Total       *totalView
	OverdueDays int
}

type requestError struct {
	field string
}

func (e requestError) Error() string {
	return fmt.Sprintf("invalid %s", e.field)
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ledgerTarget(r)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	expand, err := intParam(r, "expand", -1)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	if expand >= 0 {
		page = table.PageOf(expand, h.opts.PageSize)
	}

	tbl := h.ledgerTable(owner)
	status := http.StatusOK
	entries, err := h.source.Ledger(r.Context(), owner, id)
	if err != nil {
		status = h.fail(tbl, "load ledger", err, slog.String("owner", string(owner)), slog.Int64("id", id))
	} else {
		tbl.Bind(ledger.Lines(entries))
	}

	var ctrl disclosure.Controller
	if line, ok := tbl.Row(expand); ok {
		ctrl.Open(h.opts.Policy.Apply(line.Text()))
	}

	data := view.TemplateData{
		Title:       ledgerTitle(owner, id),
		CurrentPath: r.URL.Path,
		Data: reportPage{
			Table: tbl.Page(page),
			Disclosure: disclosureView{
				Open:      ctrl.State() == disclosure.Expanded,
				Body:      ctrl.Body(),
				CloseHref: "?page=" + strconv.Itoa(page),
			},
			ExportHref: r.URL.Path + "/export.csv",
		},
	}
	h.render(w, status, "pages/ledger.html", data)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ledgerTarget(r)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	entries, err := h.source.Ledger(r.Context(), owner, id)
	if err != nil {
		h.logger.Error("export ledger", slog.Any("error", err), slog.String("owner", string(owner)), slog.Int64("id", id))
		http.Error(w, http.StatusText(fetchStatus(err)), fetchStatus(err))
		return
	}
	tbl := h.ledgerTable(owner)
	tbl.Bind(ledger.Lines(entries))

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		h.handleServerError(w, "write ledger csv", err)
		return
	}
	filename := fmt.Sprintf("ledger-%s-%d.csv", owner, id)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	overdue, err := intParam(r, "overdue_days", 0)
	if err != nil {
		h.handleRequestError(w, err)
		return
	}
	tbl := table.New(outstanding.Columns(h.opts.Formatter, h.opts.Links), h.tableOptions("outstanding"))
	status := http.StatusOK
	pageData := reportPage{OverdueDays: overdue}
	rows, err := h.source.Outstanding(r.Context())
	if err != nil {
		status = h.fail(tbl, "load outstanding", err)
	} else {
		rows = outstanding.Overdue(rows, overdue)
		tbl.Bind(rows)
		total := outstanding.Total(rows)
		pageData.Total = &totalView{
			Amount:   h.opts.Formatter.Decimal(total.Amount),
			Accounts: total.Accounts,
			Skipped:  total.Skipped,
		}
	}
	pageData.Table = tbl.Page(page)
	if overdue > 0 {
		pageData.Table.Query = url.Values{"overdue_days": {strconv.Itoa(overdue)}}.Encode()
	}
	data := view.TemplateData{
		Title:       "Outstanding Balances",
		CurrentPath: r.URL.Path,
		Data:        pageData,
	}
	h.render(w, status, "pages/outstanding.html", data)
}

func (h *Handler) ledgerTable(owner ledger.Owner) *table.Table[ledger.Line] {
	cols := ledger.Columns(h.opts.Formatter, h.opts.Policy, ledger.ColumnOptions{
		ShowCharacter: owner == ledger.OwnerCorporation,
	})
	return table.New(cols, h.tableOptions("ledger"))
}

func (h *Handler) tableOptions(name string) table.Options {
	return table.Options{
		PageSize: h.opts.PageSize,
		OnFormatError: func(column string, row int, err error) {
			h.logger.Warn("format cell", slog.String("table", name), slog.String("column", column), slog.Int("row", row), slog.Any("error", err))
			if h.opts.Metrics != nil {
				h.opts.Metrics.ObserveFormatError(name, column)
			}
		},
	}
}

// fail binds a fetch failure to tbl and returns the page status.
func (h *Handler) fail(tbl interface{ Fail(error) }, action string, err error, attrs ...any) int {
	args := append([]any{slog.Any("error", err)}, attrs...)
	h.logger.Error(action, args...)
	tbl.Fail(err)
	return fetchStatus(err)
}

func fetchStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, fetch.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data view.TemplateData) {
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.handleServerError(w, "render "+name, err)
	}
}

func (h *Handler) handleRequestError(w http.ResponseWriter, err error) {
	var re requestError
	if errors.As(err, &re) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

var errUnknownOwner = errors.New("unknown ledger owner")

func ledgerTarget(r *http.Request) (ledger.Owner, int64, error) {
	owner, ok := ledger.ParseOwner(chi.URLParam(r, "owner"))
	if !ok {
		return "", 0, errUnknownOwner
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, requestError{field: "id"}
	}
	return owner, id, nil
}

func intParam(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, requestError{field: key}
	}
	return v, nil
}

func ledgerTitle(owner ledger.Owner, id int64) string {
	if owner == ledger.OwnerCorporation {
		return fmt.Sprintf("Corporation Ledger %d", id)
	}
	return fmt.Sprintf("Character Ledger %d", id)
}
