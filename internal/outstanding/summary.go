// Package outstanding prepares per-account unsettled balances for display.
package outstanding

import (
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
)

// Kind tags the account holder.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindCorporate  Kind = "corporate"
)

// Endpoint is the backend collection of outstanding balances.
var Endpoint = fetch.Endpoint{Name: "outstanding", Path: "outstanding"}

// ParseKind accepts the canonical tags and the short wire aliases "user" and "corp".
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindIndividual), "user":
		return KindIndividual, nil
	case string(KindCorporate), "corp":
		return KindCorporate, nil
	}
	return "", fmt.Errorf("outstanding: unknown kind %q", s)
}

// Label returns the display name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindCorporate:
		return "Corporation"
	case KindIndividual:
		return "Character"
	}
	return string(k)
}

// UnmarshalJSON rejects tags outside the closed set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("outstanding: kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Summary is one account's unsettled position.
type Summary struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Kind            Kind         `json:"kind" validate:"required"`
	Amount          format.Value `json:"amount"`
	DaysOutstanding int          `json:"days_outstanding"`
}
