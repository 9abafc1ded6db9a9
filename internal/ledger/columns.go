package ledger

import (
	"html/template"
	"strconv"

	"github.com/odyssey-erp/ledgerview/internal/disclosure"
	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/table"
)

// Line is an entry tagged with its position in the source order.
type Line struct {
	Index int
	Entry
}

// Lines numbers entries in the order received.
func Lines(entries []Entry) []Line {
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = Line{Index: i, Entry: e}
	}
	return lines
}

// ColumnOptions tunes the ledger column set.
type ColumnOptions struct {
	// ShowCharacter adds the paying character, used on corporation ledgers.
	ShowCharacter bool
	// ExpandHref links a truncated description to its disclosure.
	ExpandHref func(index int) string
}

// DefaultExpandHref points at the disclosure of row index on the current page.
func DefaultExpandHref(index int) string {
	return "?expand=" + strconv.Itoa(index)
}

// Columns returns the ledger column set: date, type, amount, balance and description.
func Columns(f *format.Formatter, policy disclosure.Policy, opts ColumnOptions) []table.Column[Line] {
	expandHref := opts.ExpandHref
	if expandHref == nil {
		expandHref = DefaultExpandHref
	}
	cols := []table.Column[Line]{
		{
			Title: "Date",
			Class: "ledger-date",
			Display: func(l Line) (string, error) {
				return f.DateTime("created", l.Created)
			},
			Sort: func(l Line) (string, error) {
				return format.DateTimeSortKey("created", l.Created)
			},
		},
		table.Text("Type", "ledger-type", func(l Line) string { return l.EntryType }),
		{
			Title: "Amount",
			Class: "ledger-amount text-end",
			Display: func(l Line) (string, error) {
				return f.Amount("amount", l.Amount)
			},
			Sort: func(l Line) (string, error) {
				return format.AmountSortKey("amount", l.Amount)
			},
		},
		{
			Title: "Balance",
			Class: "ledger-balance text-end",
			Display: func(l Line) (string, error) {
				return f.Amount("balance", l.Balance)
			},
			Sort: func(l Line) (string, error) {
				return format.AmountSortKey("balance", l.Balance)
			},
		},
	}
	if opts.ShowCharacter {
		cols = append(cols, table.Text("Character", "ledger-character", func(l Line) string { return l.Character() }))
	}
	cols = append(cols, table.Column[Line]{
		Title: "Description",
		Class: "ledger-description",
		Display: func(l Line) (string, error) {
			return l.Text(), nil
		},
		Render: func(value string, l Line) template.HTML {
			return policy.Apply(value).HTML(expandHref(l.Index))
		},
	})
	return cols
}
