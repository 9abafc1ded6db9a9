package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
	"github.com/odyssey-erp/ledgerview/internal/platform/db"
	"github.com/odyssey-erp/ledgerview/internal/platform/httpx"
)

// Repository reads accounts and their entries.
type Repository interface {
	Ledger(ctx context.Context, owner ledger.Owner, ownerID int64) ([]ledger.Entry, error)
	Debtors(ctx context.Context, kind outstanding.Kind) ([]Debtor, error)
	Totals(ctx context.Context) (Totals, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func accountKind(owner ledger.Owner) outstanding.Kind {
	if owner == ledger.OwnerCorporation {
		return outstanding.KindCorporate
	}
	return outstanding.KindIndividual
}

func (r *repository) Ledger(ctx context.Context, owner ledger.Owner, ownerID int64) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var accountID int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM ledger_accounts WHERE kind = $1 AND owner_id = $2`,
			string(accountKind(owner)), ownerID,
		).Scan(&accountID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s account %d: %w", owner, ownerID, httpx.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("accounts: lookup account: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT created, entry_type, amount::text, balance::text, description, character_name
FROM ledger_entries
WHERE account_id = $1
ORDER BY created DESC, id DESC`, accountID)
		if err != nil {
			return fmt.Errorf("accounts: query entries: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				created         time.Time
				amount, balance string
				e               ledger.Entry
			)
			if err := rows.Scan(&created, &e.EntryType, &amount, &balance, &e.Description, &e.CharacterName); err != nil {
				return fmt.Errorf("accounts: scan entry: %w", err)
			}
			e.Created = format.NewTimestamp(created)
			e.Amount = format.ParseValue(amount)
			e.Balance = format.ParseValue(balance)
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Debtors(ctx context.Context, kind outstanding.Kind) ([]Debtor, error) {
	rows, err := r.db.Query(ctx, `SELECT a.owner_id, a.name, a.balance::text, MAX(e.created)
FROM ledger_accounts a
LEFT JOIN ledger_entries e ON e.account_id = a.id
WHERE a.kind = $1 AND a.balance < 0
GROUP BY a.id
ORDER BY a.name`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("accounts: query debtors: %w", err)
	}
	defer rows.Close()
	var debtors []Debtor
	for rows.Next() {
		var (
			d       = Debtor{Kind: kind}
			balance string
		)
		if err := rows.Scan(&d.OwnerID, &d.Name, &balance, &d.LastEntry); err != nil {
			return nil, fmt.Errorf("accounts: scan debtor: %w", err)
		}
		d.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("accounts: parse balance %q: %w", balance, err)
		}
		debtors = append(debtors, d)
	}
	return debtors, rows.Err()
}

func (r *repository) Totals(ctx context.Context) (Totals, error) {
	var outstandingTotal, balanceTotal string
	var t Totals
	err := r.db.QueryRow(ctx, `SELECT
	COALESCE(SUM(balance) FILTER (WHERE balance < 0), 0)::text,
	COALESCE(SUM(balance), 0)::text,
	COUNT(*) FILTER (WHERE balance < 0)
FROM ledger_accounts`).Scan(&outstandingTotal, &balanceTotal, &t.OutstandingAccounts)
	if err != nil {
		return Totals{}, fmt.Errorf("accounts: query totals: %w", err)
	}
	t.Outstanding = format.ParseValue(outstandingTotal)
	t.Balance = format.ParseValue(balanceTotal)
	return t, nil
}
