// Package accounts serves ledger and outstanding-balance collections computed
// from the accounting store.
package accounts

import (
	_ "embed"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
)

// Schema creates the tables read by the repository.
//
//go:embed schema.sql
var Schema string

// Debtor is an account whose balance is below zero.
type Debtor struct {
	Kind      outstanding.Kind
	OwnerID   int64
	Name      string
	Balance   decimal.Decimal
	LastEntry *time.Time
}

// DaysOutstanding counts whole days since the latest entry, 0 without entries.
func (d Debtor) DaysOutstanding(now time.Time) int {
	if d.LastEntry == nil {
		return 0
	}
	return int(now.Sub(*d.LastEntry) / (24 * time.Hour))
}

// Totals summarises every account balance.
type Totals struct {
	// Outstanding sums the balances below zero.
	Outstanding         format.Value `json:"total_outstanding"`
	OutstandingAccounts int          `json:"outstanding_accounts"`
	// Balance sums all balances.
	Balance format.Value `json:"total_balance"`
}
