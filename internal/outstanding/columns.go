package outstanding

import (
	"html/template"
	"strconv"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/table"
)

// Columns returns the outstanding column set: name with detail link, kind,
// amount and days outstanding.
func Columns(f *format.Formatter, links LinkTemplates) []table.Column[Summary] {
	return []table.Column[Summary]{
		{
			Title: "Name",
			Class: "outstanding-name",
			Display: func(s Summary) (string, error) {
				return s.Name, nil
			},
			Render: func(value string, s Summary) template.HTML {
				href, err := links.Link(s)
				if err != nil {
					return template.HTML(template.HTMLEscapeString(value))
				}
				return template.HTML(`<a href="` + template.HTMLEscapeString(href) + `">` +
					template.HTMLEscapeString(value) + `</a>`)
			},
		},
		table.Text("Type", "outstanding-kind", func(s Summary) string { return s.Kind.Label() }),
		{
			Title: "Amount",
			Class: "outstanding-amount text-end",
			Display: func(s Summary) (string, error) {
				return f.Amount("amount", s.Amount)
			},
			Sort: func(s Summary) (string, error) {
				return format.AmountSortKey("amount", s.Amount)
			},
		},
		table.Text("Days Outstanding", "outstanding-days text-end", func(s Summary) string {
			return strconv.Itoa(s.DaysOutstanding)
		}),
	}
}
