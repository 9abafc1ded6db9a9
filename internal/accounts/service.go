package accounts

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
)

// Service shapes repository data into the wire collections.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Ledger returns the owner's entries newest first. Unknown accounts yield httpx.ErrNotFound.
func (s *Service) Ledger(ctx context.Context, owner ledger.Owner, ownerID int64) ([]ledger.Entry, error) {
	entries, err := s.repo.Ledger(ctx, owner, ownerID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return entries, nil
}

// Totals returns the outstanding and overall balance sums.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	return s.repo.Totals(ctx)
}

// Outstanding lists accounts in debit, individuals before corporations.
func (s *Service) Outstanding(ctx context.Context) ([]outstanding.Summary, error) {
	var individuals, corporates []Debtor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		individuals, err = s.repo.Debtors(gctx, outstanding.KindIndividual)
		return err
	})
	g.Go(func() error {
		var err error
		corporates, err = s.repo.Debtors(gctx, outstanding.KindCorporate)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rows := make([]outstanding.Summary, 0, len(individuals)+len(corporates))
	for _, group := range [][]Debtor{individuals, corporates} {
		for _, d := range group {
			rows = append(rows, outstanding.Summary{
				ID:              d.OwnerID,
				Name:            d.Name,
				Kind:            d.Kind,
				Amount:          format.NewValue(d.Balance),
				DaysOutstanding: d.DaysOutstanding(now),
			})
		}
	}
	return rows, nil
}
