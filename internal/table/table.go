package table

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
)

const (
	defaultEmptyText = "No entries."
	defaultErrorText = "Unable to load data. Please try again later."
)

// Options tunes a table.
type Options struct {
	PageSize  int
	EmptyText string
	ErrorText string
	// OnFormatError receives cell projection failures. The cell renders empty.
	OnFormatError func(column string, row int, err error)
}

// Header is a rendered column heading.
type Header struct {
	Title string
	Class string
}

// Cell is one rendered cell.
type Cell struct {
	Class string
	HTML  template.HTML
	Text  string
	Sort  string
}

// Row is one rendered record. Index is its position in the source collection.
type Row struct {
	Index int
	Cells []Cell
}

// View is a page of a table ready for a template.
type View struct {
	ID         string
	Headers    []Header
	Rows       []Row
	Pagination Pagination
	Error      string
	Empty      string
	Ordering   bool
	Searching  bool

	// Query is an encoded query string carried on pager links.
	Query string
}

// Failed reports whether the view replaces its body with an error notice.
func (v View) Failed() bool { return v.Error != "" }

// Table is the handle of one grid owned by a single view.
type Table[R any] struct {
	id      string
	columns []Column[R]
	opts    Options

	rows  []R
	grid  []Row
	err   error
	bound bool
	ready bool
}

// New constructs an unbound table.
func New[R any](columns []Column[R], opts Options) *Table[R] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.EmptyText == "" {
		opts.EmptyText = defaultEmptyText
	}
	if opts.ErrorText == "" {
		opts.ErrorText = defaultErrorText
	}
	return &Table[R]{
		id:      "tbl-" + uuid.NewString(),
		columns: columns,
		opts:    opts,
	}
}

// ID returns the DOM id of the table.
func (t *Table[R]) ID() string { return t.id }

// PageSize returns the rows per page.
func (t *Table[R]) PageSize() int { return t.opts.PageSize }

// Bind swaps in rows, keeping their order. Prior cells are discarded.
func (t *Table[R]) Bind(rows []R) {
	t.rows = append(make([]R, 0, len(rows)), rows...)
	t.grid = nil
	t.err = nil
	t.bound = true
	t.ready = false
}

// Fail replaces the table body with a single error notice.
func (t *Table[R]) Fail(err error) {
	t.rows = nil
	t.grid = nil
	t.err = err
	t.bound = true
	t.ready = true
}

// Err returns the error bound by Fail.
func (t *Table[R]) Err() error { return t.err }

// Len returns the number of bound rows.
func (t *Table[R]) Len() int { return len(t.rows) }

// Row returns the bound record at source index i.
func (t *Table[R]) Row(i int) (R, bool) {
	var zero R
	if i < 0 || i >= len(t.rows) {
		return zero, false
	}
	return t.rows[i], true
}

// Init builds the cell grid for the bound rows. It is a no-op before Bind and
// when the grid for the current data already exists.
func (t *Table[R]) Init() {
	if !t.bound || t.ready {
		return
	}
	grid := make([]Row, 0, len(t.rows))
	for i, record := range t.rows {
		cells := make([]Cell, 0, len(t.columns))
		for _, col := range t.columns {
			cells = append(cells, t.cell(col, i, record))
		}
		grid = append(grid, Row{Index: i, Cells: cells})
	}
	t.grid = grid
	t.ready = true
}

func (t *Table[R]) cell(col Column[R], i int, record R) Cell {
	var value string
	if col.Display != nil {
		v, err := col.Display(record)
		if err != nil {
			t.formatError(col.Title, i, err)
		} else {
			value = v
		}
	}
	sortKey := value
	if col.Sort != nil {
		v, err := col.Sort(record)
		if err != nil {
			t.formatError(col.Title, i, err)
			sortKey = ""
		} else {
			sortKey = v
		}
	}
	var markup template.HTML
	if col.Render != nil {
		markup = col.Render(value, record)
	} else {
		markup = template.HTML(template.HTMLEscapeString(value))
	}
	return Cell{Class: col.Class, HTML: markup, Text: value, Sort: sortKey}
}

func (t *Table[R]) formatError(column string, row int, err error) {
	if t.opts.OnFormatError != nil {
		t.opts.OnFormatError(column, row, err)
	}
}

func (t *Table[R]) headers() []Header {
	headers := make([]Header, 0, len(t.columns))
	for _, col := range t.columns {
		headers = append(headers, Header{Title: col.Title, Class: col.Class})
	}
	return headers
}

// Page returns page n (1-based, clamped) of the table.
func (t *Table[R]) Page(n int) View {
	t.Init()
	view := View{
		ID:      t.id,
		Headers: t.headers(),
		Empty:   t.opts.EmptyText,
	}
	if t.err != nil {
		view.Error = t.opts.ErrorText
		view.Pagination = NewPagination(1, t.opts.PageSize, 0)
		return view
	}
	view.Pagination = NewPagination(n, t.opts.PageSize, len(t.grid))
	start, end := view.Pagination.Bounds()
	view.Rows = t.grid[start:end]
	return view
}

// WriteText writes every row as tab-aligned text in source order.
func (t *Table[R]) WriteText(w io.Writer) error {
	t.Init()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, h := range t.headers() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h.Title)
	}
	fmt.Fprintln(tw)
	if t.err != nil {
		fmt.Fprintln(tw, t.opts.ErrorText)
		return tw.Flush()
	}
	for _, row := range t.grid {
		for i, cell := range row.Cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, singleLine(cell.Text))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// WriteCSV writes every row's display values as CSV in source order.
func (t *Table[R]) WriteCSV(w io.Writer) error {
	if t.err != nil {
		return fmt.Errorf("table: export: %w", t.err)
	}
	t.Init()
	writer := csv.NewWriter(w)
	headers := t.headers()
	record := make([]string, len(headers))
	for i, h := range headers {
		record[i] = h.Title
	}
	if err := writer.Write(record); err != nil {
		return err
	}
	for _, row := range t.grid {
		record = record[:0]
		for _, cell := range row.Cells {
			record = append(record, cell.Text)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func singleLine(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
