// Package ledger prepares running-balance ledger entries for display.
package ledger

import (
	"strconv"

	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
)

// Owner identifies whose ledger is shown.
type Owner string

const (
	OwnerCharacter   Owner = "character"
	OwnerCorporation Owner = "corporation"
)

// ParseOwner validates a path segment.
func ParseOwner(s string) (Owner, bool) {
	switch Owner(s) {
	case OwnerCharacter, OwnerCorporation:
		return Owner(s), true
	}
	return "", false
}

// Entry is one financial movement. Balance is the running total after the
// entry, supplied by the backend and never recomputed.
type Entry struct {
	Created       format.Timestamp `json:"created"`
	EntryType     string           `json:"entry_type"`
	Amount        format.Value     `json:"amount"`
	Balance       format.Value     `json:"balance"`
	Description   *string          `json:"description"`
	CharacterName *string          `json:"character_name,omitempty"`
}

// Text returns the description, empty when absent.
func (e Entry) Text() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// Character returns the character name, empty when absent.
func (e Entry) Character() string {
	if e.CharacterName == nil {
		return ""
	}
	return *e.CharacterName
}

// Endpoint returns the backend collection of the owner's ledger.
func Endpoint(owner Owner, id int64) fetch.Endpoint {
	return fetch.Endpoint{
		Name: "ledger_" + string(owner),
		Path: "ledger/" + string(owner) + "/" + strconv.FormatInt(id, 10),
	}
}
