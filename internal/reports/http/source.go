package reporthttp

import (
	"context"

	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/ledger"
	"github.com/odyssey-erp/ledgerview/internal/outstanding"
)

// BackendSource reads report collections through the fetch client.
type BackendSource struct {
	client *fetch.Client
}

// NewBackendSource wraps client.
func NewBackendSource(client *fetch.Client) *BackendSource {
	return &BackendSource{client: client}
}

// Ledger reads the owner's entries.
func (s *BackendSource) Ledger(ctx context.Context, owner ledger.Owner, id int64) ([]ledger.Entry, error) {
	return fetch.Records[ledger.Entry](ctx, s.client, ledger.Endpoint(owner, id))
}

// Outstanding reads the outstanding balances.
func (s *BackendSource) Outstanding(ctx context.Context) ([]outstanding.Summary, error) {
	return fetch.Records[outstanding.Summary](ctx, s.client, outstanding.Endpoint)
}
