package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Queries provides read-only projections over the ledger and the balance
// cache. No locks are taken: the ledger is append-only and safe for
// concurrent readers.
type Queries struct {
	entries  EntryRepository
	balances BalanceRepository
}

// NewQueries creates the read-side service.
func NewQueries(entries EntryRepository, balances BalanceRepository) *Queries {
	return &Queries{entries: entries, balances: balances}
}

// GetBalance returns the current balance for a key, or nil when no
// movement has ever touched it.
func (q *Queries) GetBalance(ctx context.Context, key Key) (*entity.StockBalance, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return q.balances.Get(ctx, key)
}

// GetBalancesBySku returns balances across all warehouses for a SKU.
func (q *Queries) GetBalancesBySku(ctx context.Context, tenantID id.ID, sku entity.SkuRef) ([]entity.StockBalance, error) {
	if id.IsNil(tenantID) {
		return nil, fmt.Errorf("tenant id is required")
	}
	if err := sku.Validate(); err != nil {
		return nil, err
	}
	return q.balances.ListBySku(ctx, tenantID, sku)
}

// ListEntries returns a filtered page of ledger history, newest first.
func (q *Queries) ListEntries(ctx context.Context, filter EntryFilter) (EntryPage, error) {
	if id.IsNil(filter.TenantID) {
		return EntryPage{}, fmt.Errorf("tenant id is required")
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return q.entries.List(ctx, filter)
}

// GetBalanceAsOf returns the ledger quantity sum for a key up to and
// including a date. Used for audit comparison against the cache.
func (q *Queries) GetBalanceAsOf(ctx context.Context, key Key, date time.Time) (types.Quantity, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	return q.entries.SumAsOf(ctx, key, date)
}
