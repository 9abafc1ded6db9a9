// Package disclosure bounds long text to an inline preview and discloses the
// full text on demand in a single shared detail surface.
package disclosure

import (
	"html/template"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultThreshold is the preview length in characters.
	DefaultThreshold = 75
	// Ellipsis marks a truncated preview.
	Ellipsis = "…"
	// ExpandLabel is the affordance shown next to a truncated preview.
	ExpandLabel = "click to expand"
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Policy decides how a text field is presented inline.
type Policy struct {
	Threshold int
}

func (p Policy) threshold() int {
	if p.Threshold <= 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

// Cell is the inline presentation of one text field.
type Cell struct {
	// Preview is the escaped inline text, with line breaks as <br>.
	Preview template.HTML
	// Full is the escaped complete text with raw newlines. Empty unless Truncated.
	Full      string
	Truncated bool
}

// Escape escapes markup-significant characters once.
func Escape(s string) string {
	return template.HTMLEscapeString(s)
}

func breakLines(escaped string) string {
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// Apply presents s. Text longer than the threshold is cut to the threshold and
// keeps its escaped full form for later disclosure.
func (p Policy) Apply(s string) Cell {
	s = newlines.Replace(s)
	limit := p.threshold()
	if utf8.RuneCountInString(s) <= limit {
		return Cell{Preview: template.HTML(breakLines(Escape(s)))}
	}
	head := string([]rune(s)[:limit])
	return Cell{
		Preview:   template.HTML(breakLines(Escape(head)) + Ellipsis),
		Full:      Escape(s),
		Truncated: true,
	}
}

// Expand materialises stored full text for the detail surface. The text is
// already escaped; only line breaks are encoded.
func Expand(full string) template.HTML {
	return template.HTML(breakLines(full))
}

// HTML returns the cell markup. A truncated cell carries its full text in an
// inert <template> element and a trigger pointing at expandHref.
func (c Cell) HTML(expandHref string) template.HTML {
	if !c.Truncated {
		return c.Preview
	}
	var b strings.Builder
	b.WriteString(`<span class="disclosure" data-disclosure>`)
	b.WriteString(`<span class="disclosure-preview">`)
	b.WriteString(string(c.Preview))
	b.WriteString(`</span> <a class="disclosure-trigger" data-disclosure-trigger href="`)
	b.WriteString(Escape(expandHref))
	b.WriteString(`">`)
	b.WriteString(ExpandLabel)
	b.WriteString(`</a><template class="disclosure-full">`)
	b.WriteString(c.Full)
	b.WriteString(`</template></span>`)
	return template.HTML(b.String())
}
