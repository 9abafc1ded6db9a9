package outstanding

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// IDToken is the named placeholder substituted by the account id.
const IDToken = "{id}"

// ErrUnknownKind is returned when no template exists for a summary kind.
var ErrUnknownKind = errors.New("outstanding: unknown kind")

// LinkTemplates holds the detail page template of each kind.
type LinkTemplates struct {
	corporate  string
	individual string
}

// NewLinkTemplates validates that both templates carry IDToken exactly once.
func NewLinkTemplates(corporate, individual string) (LinkTemplates, error) {
	for name, tpl := range map[string]string{"corporate": corporate, "individual": individual} {
		if n := strings.Count(tpl, IDToken); n != 1 {
			return LinkTemplates{}, fmt.Errorf("outstanding: %s link template %q must contain %s once, found %d", name, tpl, IDToken, n)
		}
	}
	return LinkTemplates{corporate: corporate, individual: individual}, nil
}

// Link builds the detail target of s from the template selected by its kind.
func (l LinkTemplates) Link(s Summary) (string, error) {
	var tpl string
	switch s.Kind {
	case KindCorporate:
		tpl = l.corporate
	case KindIndividual:
		tpl = l.individual
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	return strings.Replace(tpl, IDToken, url.PathEscape(strconv.FormatInt(s.ID, 10)), 1), nil
}
