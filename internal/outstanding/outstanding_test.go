package outstanding

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/table"
)

func testLinks(t *testing.T) LinkTemplates {
	t.Helper()
	links, err := NewLinkTemplates("/ledger/corporation/{id}", "/ledger/character/{id}")
	require.NoError(t, err)
	return links
}

func TestCorporateScenario(t *testing.T) {
	var rows []Summary
	require.NoError(t, json.Unmarshal([]byte(`[{"id":5,"kind":"corp","name":"Acme","amount":1500.004,"days_outstanding":12}]`), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, KindCorporate, rows[0].Kind)

	tbl := table.New(Columns(format.New(language.AmericanEnglish), testLinks(t)), table.Options{})
	tbl.Bind(rows)
	view := tbl.Page(1)
	require.Len(t, view.Rows, 1)
	cells := view.Rows[0].Cells
	assert.Equal(t, `<a href="/ledger/corporation/5">Acme</a>`, string(cells[0].HTML))
	assert.Equal(t, "Corporation", cells[1].Text)
	assert.Equal(t, "1,500", cells[2].Text)
	assert.Equal(t, "12", cells[3].Text)
}

func TestKindSelectsTemplate(t *testing.T) {
	links := testLinks(t)
	corp, err := links.Link(Summary{ID: 98000001, Kind: KindCorporate})
	require.NoError(t, err)
	assert.Equal(t, "/ledger/corporation/98000001", corp)

	char, err := links.Link(Summary{ID: 90000001, Kind: KindIndividual})
	require.NoError(t, err)
	assert.Equal(t, "/ledger/character/90000001", char)

	_, err = links.Link(Summary{ID: 1, Kind: "alliance"})
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestZeroIDIsSubstituted(t *testing.T) {
	links, err := NewLinkTemplates("/corp/{id}/detail?from=0", "/char/{id}")
	require.NoError(t, err)
	got, err := links.Link(Summary{ID: 0, Kind: KindCorporate})
	require.NoError(t, err)
	assert.Equal(t, "/corp/0/detail?from=0", got)
}

func TestNewLinkTemplatesRequiresOneToken(t *testing.T) {
	_, err := NewLinkTemplates("/corp/0", "/char/{id}")
	assert.Error(t, err)
	_, err = NewLinkTemplates("/corp/{id}", "/char/{id}/{id}")
	assert.Error(t, err)
}

func TestKindDecoding(t *testing.T) {
	cases := map[string]Kind{
		`"user"`:       KindIndividual,
		`"individual"`: KindIndividual,
		`"corp"`:       KindCorporate,
		`"corporate"`:  KindCorporate,
	}
	for raw, want := range cases {
		var k Kind
		require.NoError(t, json.Unmarshal([]byte(raw), &k), raw)
		assert.Equal(t, want, k)
	}
	var k Kind
	assert.Error(t, json.Unmarshal([]byte(`"alliance"`), &k))
	assert.Error(t, json.Unmarshal([]byte(`3`), &k))
}

func TestDaysPassThrough(t *testing.T) {
	rows := []Summary{
		{ID: 1, Name: "Zero", Kind: KindIndividual, DaysOutstanding: 0},
		{ID: 2, Name: "Early", Kind: KindIndividual, DaysOutstanding: -3},
	}
	tbl := table.New(Columns(format.New(language.AmericanEnglish), testLinks(t)), table.Options{})
	tbl.Bind(rows)
	view := tbl.Page(1)
	assert.Equal(t, "0", view.Rows[0].Cells[3].Text)
	assert.Equal(t, "-3", view.Rows[1].Cells[3].Text)
	assert.Equal(t, "", view.Rows[0].Cells[2].Text)
}

func TestNameIsEscaped(t *testing.T) {
	rows := []Summary{{ID: 7, Name: `<b>"Evil" & Co</b>`, Kind: KindCorporate}}
	tbl := table.New(Columns(format.New(language.AmericanEnglish), testLinks(t)), table.Options{})
	tbl.Bind(rows)
	html := string(tbl.Page(1).Rows[0].Cells[0].HTML)
	assert.Equal(t, `<a href="/ledger/corporation/7">&lt;b&gt;&#34;Evil&#34; &amp; Co&lt;/b&gt;</a>`, html)
}

func TestTotalSkipsUnparseableAmounts(t *testing.T) {
	var rows []Summary
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":1,"kind":"user","name":"A","amount":-10.25,"days_outstanding":1},
		{"id":2,"kind":"corp","name":"B","amount":"-98765432109876.54","days_outstanding":2},
		{"id":3,"kind":"corp","name":"C","amount":null,"days_outstanding":3},
		{"id":4,"kind":"corp","name":"D","amount":"n/a","days_outstanding":4}
	]`), &rows))

	total := Total(rows)
	assert.Equal(t, "-98765432109886.79", total.Amount.String())
	assert.Equal(t, 2, total.Accounts)
	assert.Equal(t, 2, total.Skipped)

	empty := Total(nil)
	assert.True(t, empty.Amount.IsZero())
	assert.Zero(t, empty.Accounts)
}

func TestOverdueKeepsOrder(t *testing.T) {
	rows := []Summary{
		{ID: 1, DaysOutstanding: 45},
		{ID: 2, DaysOutstanding: 3},
		{ID: 3, DaysOutstanding: 30},
		{ID: 4, DaysOutstanding: -2},
	}
	kept := Overdue(rows, 30)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(1), kept[0].ID)
	assert.Equal(t, int64(3), kept[1].ID)
	assert.Len(t, Overdue(rows, 0), 4)
}

func TestEmptyNameDecodes(t *testing.T) {
	var rows []Summary
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"kind":"user","name":"","amount":-1,"days_outstanding":0}]`), &rows))
	require.Len(t, rows, 1)

	tbl := table.New(Columns(format.New(language.AmericanEnglish), testLinks(t)), table.Options{})
	tbl.Bind(rows)
	view := tbl.Page(1)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, `<a href="/ledger/character/7"></a>`, string(view.Rows[0].Cells[0].HTML))
}
