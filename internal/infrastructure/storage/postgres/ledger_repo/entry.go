// Package ledger_repo provides PostgreSQL implementations for the stock
// ledger repositories.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const entriesTable = "stock_ledger_entries"

var entryColumns = []string{
	"id", "tenant_id", "branch_id", "warehouse_id",
	"sku_kind", "sku_id",
	"txn_type", "txn_date",
	"ref_type", "ref_id", "ref_number",
	"quantity_in", "quantity_out", "uom",
	"unit_cost", "total_value",
	"balance_quantity", "balance_value",
	"batch", "narration",
	"created_by", "created_at",
}

// Compile-time check.
var _ ledger.EntryRepository = (*EntryRepo)(nil)

// EntryRepo implements ledger.EntryRepository on PostgreSQL.
// The table is append-only: Insert and the reconciliation snapshot rewrite
// are the only writes.
type EntryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewEntryRepo creates a new ledger entry repository.
func NewEntryRepo(txm *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends one ledger entry.
func (r *EntryRepo) Insert(ctx context.Context, e *entity.LedgerEntry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.TenantID, e.BranchID, e.WarehouseID,
			e.SkuKind, e.SkuID,
			e.TxnType, e.TxnDate,
			e.RefType, e.RefID, e.RefNumber,
			e.QuantityIn, e.QuantityOut, e.UOM,
			e.UnitCost, e.TotalValue,
			e.BalanceQuantity, e.BalanceValue,
			e.Batch, e.Narration,
			e.CreatedBy, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

// keyConditions returns the WHERE clause for one balance key.
func keyConditions(key ledger.Key) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id":    key.TenantID,
		"warehouse_id": key.WarehouseID,
		"sku_kind":     key.Sku.Kind,
		"sku_id":       key.Sku.ID,
	}
}

// ListForKey returns every entry for a key in chronological order.
// UUIDv7 ids break txn_date ties by insertion order.
func (r *EntryRepo) ListForKey(ctx context.Context, key ledger.Key) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(keyConditions(key)).
		OrderBy("txn_date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	return entries, nil
}

// ListInward returns the inward entries for a key, oldest first.
func (r *EntryRepo) ListInward(ctx context.Context, key ledger.Key) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(keyConditions(key)).
		Where(squirrel.Gt{"quantity_in": int64(0)}).
		OrderBy("txn_date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select inward entries: %w", err)
	}

	return entries, nil
}

// SumOutward returns the total historical outward quantity for a key.
func (r *EntryRepo) SumOutward(ctx context.Context, key ledger.Key) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity_out), 0)").
		From(entriesTable).
		Where(keyConditions(key))

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &total, sql, args...); err != nil {
		return 0, fmt.Errorf("sum outward: %w", err)
	}

	return types.Quantity(total), nil
}

// SumAsOf returns the signed quantity sum for a key up to the date inclusive.
func (r *EntryRepo) SumAsOf(ctx context.Context, key ledger.Key, date time.Time) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity_in - quantity_out), 0)").
		From(entriesTable).
		Where(keyConditions(key)).
		Where(squirrel.LtOrEq{"txn_date": date})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &total, sql, args...); err != nil {
		return 0, fmt.Errorf("sum as of: %w", err)
	}

	return types.Quantity(total), nil
}

// UpdateSnapshot rewrites the post-movement snapshot of one entry.
// Movement fields stay immutable.
func (r *EntryRepo) UpdateSnapshot(ctx context.Context, entryID id.ID, quantity types.Quantity, value types.Money) error {
	q := r.builder.Update(entriesTable).
		Set("balance_quantity", quantity).
		Set("balance_value", value).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update snapshot: entry %s not found", entryID)
	}

	return nil
}

// List returns a filtered, paginated page of history, newest first.
func (r *EntryRepo) List(ctx context.Context, filter ledger.EntryFilter) (ledger.EntryPage, error) {
	page := ledger.EntryPage{Limit: filter.Limit, Offset: filter.Offset}

	conditions := r.filterConditions(filter)

	countQ := r.builder.Select("COUNT(*)").From(entriesTable)
	for _, cond := range conditions {
		countQ = countQ.Where(cond)
	}

	sql, args, err := countQ.ToSql()
	if err != nil {
		return page, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &page.TotalCount, sql, args...); err != nil {
		return page, fmt.Errorf("count entries: %w", err)
	}

	listQ := r.builder.Select(entryColumns...).From(entriesTable)
	for _, cond := range conditions {
		listQ = listQ.Where(cond)
	}
	listQ = listQ.OrderBy("txn_date DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err = listQ.ToSql()
	if err != nil {
		return page, fmt.Errorf("build list query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &page.Items, sql, args...); err != nil {
		return page, fmt.Errorf("select entries: %w", err)
	}

	return page, nil
}

func (r *EntryRepo) filterConditions(filter ledger.EntryFilter) []squirrel.Sqlizer {
	conditions := []squirrel.Sqlizer{
		squirrel.Eq{"tenant_id": filter.TenantID},
	}

	if filter.BranchID != nil {
		conditions = append(conditions, squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.WarehouseID != nil {
		conditions = append(conditions, squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Sku != nil {
		conditions = append(conditions, squirrel.Eq{
			"sku_kind": filter.Sku.Kind,
			"sku_id":   filter.Sku.ID,
		})
	}
	if len(filter.TxnTypes) > 0 {
		conditions = append(conditions, squirrel.Eq{"txn_type": filter.TxnTypes})
	}
	if filter.FromDate != nil {
		conditions = append(conditions, squirrel.GtOrEq{"txn_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		conditions = append(conditions, squirrel.LtOrEq{"txn_date": *filter.ToDate})
	}
	if filter.Batch != nil {
		conditions = append(conditions, squirrel.Eq{"batch": *filter.Batch})
	}

	return conditions
}
