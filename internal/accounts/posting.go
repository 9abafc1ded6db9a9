package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/ledgerview/internal/platform/httpx"
)

// Entry types accepted by Post.
const (
	EntryDeposit    = "deposit"
	EntryTax        = "tax"
	EntryFine       = "fine"
	EntryAdjustment = "adjustment"
	EntryCharge     = "charge"
)

var entryTypes = map[string]bool{
	EntryDeposit:    true,
	EntryTax:        true,
	EntryFine:       true,
	EntryAdjustment: true,
	EntryCharge:     true,
}

var (
	ErrEntryType = errors.New("unknown entry type")
	ErrAmount    = errors.New("amount must be positive")
)

// Posting is a request to add one entry to an account.
type Posting struct {
	AccountID   int64
	EntryType   string
	Amount      decimal.Decimal
	Description string
	Character   string
	Created     time.Time
}

// SignedAmount validates p and returns the amount as booked: deposits credit
// the account, every other type debits it.
func (p Posting) SignedAmount() (decimal.Decimal, error) {
	if !entryTypes[p.EntryType] {
		return decimal.Zero, fmt.Errorf("%w %q: %w", ErrEntryType, p.EntryType, httpx.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w, got %s: %w", ErrAmount, p.Amount, httpx.ErrValidation)
	}
	if p.EntryType == EntryDeposit {
		return p.Amount, nil
	}
	return p.Amount.Neg(), nil
}

// Querier is the subset of pgx.Tx used by Post.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Post books p against its account and returns the new running balance. The
// account balance and the entry's balance are updated in the same statement
// pair, so q should be a transaction.
func Post(ctx context.Context, q Querier, p Posting) (decimal.Decimal, error) {
	amount, err := p.SignedAmount()
	if err != nil {
		return decimal.Zero, err
	}
	created := p.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	var balance string
	err = q.QueryRow(ctx,
		`UPDATE ledger_accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance::text`,
		p.AccountID, amount.String(),
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("account %d: %w", p.AccountID, httpx.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("accounts: update balance: %w", err)
	}

	var entryID int64
	err = q.QueryRow(ctx, `INSERT INTO ledger_entries (account_id, created, entry_type, amount, balance, description, character_name)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		p.AccountID, created, p.EntryType, amount.String(), balance, nullable(p.Description), nullable(p.Character),
	).Scan(&entryID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("accounts: insert entry: %w", err)
	}
	return decimal.NewFromString(balance)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
