// Package ledger provides the stock valuation ledger engine: an immutable
// movement ledger plus a materialized balance cache per
// (tenant, warehouse, SKU), kept consistent under one of three costing
// policies.
package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Key identifies one balance row and its slice of the ledger.
type Key struct {
	TenantID    id.ID
	WarehouseID id.ID
	Sku         entity.SkuRef
}

// Validate checks the key invariants.
func (k Key) Validate() error {
	if id.IsNil(k.TenantID) {
		return apperror.NewValidation("tenant id is required").WithDetail("field", "tenantId")
	}
	if id.IsNil(k.WarehouseID) {
		return apperror.NewValidation("warehouse id is required").WithDetail("field", "warehouseId")
	}
	return k.Sku.Validate()
}

// String renders the key for logs and lock diagnostics.
func (k Key) String() string {
	return k.TenantID.String() + "/" + k.WarehouseID.String() + "/" + k.Sku.String()
}

// EntryFilter narrows paginated ledger history queries.
type EntryFilter struct {
	TenantID    id.ID
	BranchID    *id.ID
	WarehouseID *id.ID
	Sku         *entity.SkuRef
	TxnTypes    []entity.TxnType
	FromDate    *time.Time
	ToDate      *time.Time
	Batch       *string

	// Pagination
	Limit  int
	Offset int
}

// EntryPage contains one page of ledger history.
type EntryPage struct {
	Items      []entity.LedgerEntry `json:"items"`
	TotalCount int64                `json:"totalCount"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// EntryRepository defines persistence operations for ledger entries.
/// The store is append-only: no delete exists, and the only update is the
// snapshot rewrite reserved for reconciliation.
type EntryRepository interface {
	// Insert appends one entry.
	Insert(ctx context.Context, entry *entity.LedgerEntry) error

	// ListForKey returns every entry for a key in chronological order
	// (transaction date, then insertion order). Used by reconciliation.
	ListForKey(ctx context.Context, key Key) ([]entity.LedgerEntry, error)

	// ListInward returns entries with quantity_in > 0 for a key,
	// oldest first. These are the FIFO cost layers.
	ListInward(ctx context.Context, key Key) ([]entity.LedgerEntry, error)

	// SumOutward returns the total historical outward quantity for a key.
	SumOutward(ctx context.Context, key Key) (types.Quantity, error)

	// SumAsOf returns the signed quantity sum for a key up to and
	// including a date.
	SumAsOf(ctx context.Context, key Key, date time.Time) (types.Quantity, error)

	// UpdateSnapshot rewrites the two post-movement snapshot fields of one
	// entry. Reconciliation only; movement fields are never touched.
	UpdateSnapshot(ctx context.Context, entryID id.ID, quantity types.Quantity, value types.Money) error

	// List returns a filtered, paginated page of history, newest first.
	List(ctx context.Context, filter EntryFilter) (EntryPage, error)
}

// BalanceRepository defines persistence operations for the balance cache.
type BalanceRepository interface {
	// Get returns the balance row for a key, or nil when none exists yet.
	Get(ctx context.Context, key Key) (*entity.StockBalance, error)

	// GetForUpdate returns the balance row under an exclusive row lock,
	// inserting a zero-initialized row first when absent. The lock is held
	// until the ambient transaction completes; callers must be inside one.
	GetForUpdate(ctx context.Context, key Key) (*entity.StockBalance, error)

	// ListBySku returns balances across all warehouses for a SKU.
	ListBySku(ctx context.Context, tenantID id.ID, sku entity.SkuRef) ([]entity.StockBalance, error)

	// Save persists a mutated balance row.
	Save(ctx context.Context, balance *entity.StockBalance) error
}
