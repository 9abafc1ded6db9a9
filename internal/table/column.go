// Package table paints record collections as static, source-ordered grids.
package table

import "html/template"

// Column describes how one field of R is projected and rendered.
//
// Display yields the cell value, Sort its comparable projection (Display when
// nil). Render, when set, turns the value and its row into final markup and is
// responsible for its own escaping. All three must be pure.
type Column[R any] struct {
	Title   string
	Class   string
	Display func(R) (string, error)
	Sort    func(R) (string, error)
	Render  func(value string, row R) template.HTML
}

// Text returns a column over a plain string field.
func Text[R any](title, class string, field func(R) string) Column[R] {
	return Column[R]{
		Title: title,
		Class: class,
		Display: func(row R) (string, error) {
			return field(row), nil
		},
	}
}
