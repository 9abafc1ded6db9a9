package reporthttp

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/ledgerview/internal/disclosure"
	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
	"github.com/odyssey-erp/ledgerview/internal/view"
)

type stubMetrics struct {
	mu      sync.Mutex
	columns []string
}

func (s *stubMetrics) ObserveFormatError(table, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = append(s.columns, table+"/"+column)
}

var longDescription = "Corporation tax for <Home> & friends\n" + strings.Repeat("x", 90)

var backendPayloads = map[string]string{
	"/api/ledger/character/42": `[
		{"created":"2024-01-03T10:00:00Z","entry_type":"deposit","amount":1234.5,"balance":1234.5,"description":"first"},
		{"created":null,"entry_type":"fee","amount":-10,"balance":90,"description":"ok"},
		{"created":"2024-01-01T00:00:00Z","entry_type":"tax","amount":0,"balance":"bogus","description":` + quote(longDescription) + `}
	]`,
	"/api/ledger/corporation/7": `[{"created":"2024-02-01T00:00:00Z","entry_type":"tax","amount":5,"balance":5,"description":"x","character_name":"Alice"}]`,
	"/api/outstanding": `[
		{"id":5,"kind":"corp","name":"Acme","amount":1500.004,"days_outstanding":12},
		{"id":0,"kind":"user","name":"Zero","amount":-1,"days_outstanding":-2},
		{"id":6,"kind":"corp","name":"","amount":-3.5,"days_outstanding":40},
		{"id":8,"kind":"user","name":"Eve","amount":-2,"days_outstanding":31}
	]`,
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func newBackend(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := backendPayloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, fail bool, metrics *stubMetrics) http.Handler {
	t.Helper()
	backend := newBackend(t, fail)
	client, err := fetch.NewClient(backend.URL + "/api")
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	links, err := outstanding.NewLinkTemplates("/ledger/corporation/{id}", "/ledger/character/{id}")
	require.NoError(t, err)

	opts := Options{
		Formatter: format.New(language.AmericanEnglish),
		Policy:    disclosure.Policy{},
		Links:     links,
		PageSize:  2,
	}
	if metrics != nil {
		opts.Metrics = metrics
	}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewBackendSource(client), engine, opts)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLedgerPageRendersRowsInSourceOrder(t *testing.T) {
	metrics := &stubMetrics{}
	rec := get(t, newTestServer(t, false, metrics), "/ledger/character/42")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Character Ledger 42")
	first := strings.Index(body, `data-row="0"`)
	second := strings.Index(body, `data-row="1"`)
	require.True(t, first >= 0 && second > first)
	assert.NotContains(t, body, `data-row="2"`, "third row is on page 2")
	assert.Contains(t, body, "1,234.5")
	assert.Contains(t, body, "January 3, 2024 10:00 AM")
	assert.Contains(t, body, `data-ordering="false"`)
	assert.Contains(t, body, `href="?page=2"`)
	assert.NotContains(t, body, "Character</th>")
	assert.Contains(t, metrics.columns, "ledger/Balance", "the whole grid is built once")
}

func TestLedgerPageTwoTruncatesAndCountsFormatErrors(t *testing.T) {
	metrics := &stubMetrics{}
	rec := get(t, newTestServer(t, false, metrics), "/ledger/character/42?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `data-row="2"`)
	assert.Contains(t, body, "Corporation tax for &lt;Home&gt; &amp; friends<br>")
	assert.Contains(t, body, disclosure.Ellipsis)
	assert.Contains(t, body, `href="?expand=2"`)
	assert.NotContains(t, body, "<Home>")
	assert.NotContains(t, body, "&amp;lt;")
	assert.Contains(t, body, `data-order=""`)
	assert.Contains(t, metrics.columns, "ledger/Balance")
}

func TestLedgerExpandOpensDisclosure(t *testing.T) {
	h := newTestServer(t, false, nil)
	rec := get(t, h, "/ledger/character/42?expand=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	modal := body[strings.Index(body, `id="disclosure-modal"`):]
	assert.NotContains(t, modal[:strings.Index(modal, ">")], "hidden")
	assert.Contains(t, modal, "&lt;Home&gt; &amp; friends<br>"+strings.Repeat("x", 90))
	assert.Contains(t, modal, `href="?page=2"`)

	rec = get(t, h, "/ledger/character/42?expand=1")
	body = rec.Body.String()
	modal = body[strings.Index(body, `id="disclosure-modal"`):]
	assert.Contains(t, modal[:strings.Index(modal, ">")], "hidden", "short text never opens")
}

func TestCorporationLedgerShowsCharacter(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/ledger/corporation/7")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Character</th>")
	assert.Contains(t, body, "Alice")
}

func TestLedgerFetchFailureRendersSingleErrorRow(t *testing.T) {
	rec := get(t, newTestServer(t, true, nil), "/ledger/character/42")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "table-error"))
	assert.Equal(t, 1, strings.Count(body, `role="alert"`))
	assert.NotContains(t, body, "data-row=")
	assert.Contains(t, body, "Unable to load data")
	assert.Contains(t, body, "</html>")
}

func TestLedgerRejectsBadTargets(t *testing.T) {
	h := newTestServer(t, false, nil)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/ledger/alliance/1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/ledger/character/abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/ledger/character/42?page=x").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/ledger/character/42?expand=-1").Code)
}

func TestOutstandingPage(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/outstanding")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/ledger/corporation/5">Acme</a>`)
	assert.Contains(t, body, `<a href="/ledger/character/0">Zero</a>`)
	assert.Contains(t, body, ">1,500<")
	assert.Contains(t, body, ">12<")
	assert.Contains(t, body, ">-2<")
	assert.Contains(t, body, "Total outstanding: <strong>1,493.5</strong> across 4 accounts")
	assert.Contains(t, body, `href="?page=2"`)
}

func TestOutstandingOverdueFilter(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/outstanding?overdue_days=10")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/ledger/corporation/5">Acme</a>`)
	assert.Contains(t, body, `<a href="/ledger/corporation/6"></a>`, "an empty name is still a row")
	assert.NotContains(t, body, "Zero")
	assert.Contains(t, body, "Total outstanding: <strong>1,494.5</strong> across 3 accounts")
	assert.Contains(t, body, `href="?page=2&amp;overdue_days=10"`)
	assert.Contains(t, body, `value="10"`)

	rec = get(t, newTestServer(t, false, nil), "/outstanding?overdue_days=10&page=2")
	assert.Contains(t, rec.Body.String(), "Eve")

	assert.Equal(t, http.StatusBadRequest, get(t, newTestServer(t, false, nil), "/outstanding?overdue_days=-1").Code)
}

func TestOutstandingFetchFailure(t *testing.T) {
	rec := get(t, newTestServer(t, true, nil), "/outstanding")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "table-error"))
	assert.NotContains(t, rec.Body.String(), "Total outstanding")
}

func TestExportCSV(t *testing.T) {
	rec := get(t, newTestServer(t, false, nil), "/ledger/character/42/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ledger-character-42.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "Date,Type,Amount,Balance,Description", lines[0])
	assert.Equal(t, `January 3, 2024 10:00 AM,deposit,"1,234.5","1,234.5",first`, lines[1])
	assert.Equal(t, ",fee,-10,90,ok", lines[2])

	rec = get(t, newTestServer(t, true, nil), "/ledger/character/42/export.csv")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
