package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const balancesTable = "stock_balances"

var balanceColumns = []string{
	"tenant_id", "warehouse_id", "sku_kind", "sku_id",
	"available", "reserved", "on_order", "in_production", "free",
	"valuation_rate", "total_value",
	"last_movement_at", "last_purchase_at", "last_purchase_rate", "last_sale_at",
	"updated_at",
}

// Compile-time check.
var _ ledger.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implements ledger.BalanceRepository on PostgreSQL.
type BalanceRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewBalanceRepo creates a new balance repository.
func NewBalanceRepo(txm *postgres.TxManager) *BalanceRepo {
	return &BalanceRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the balance row for a key, or nil when none exists yet.
func (r *BalanceRepo) Get(ctx context.Context, key ledger.Key) (*entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(balancesTable).
		Where(keyConditions(key)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balance entity.StockBalance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}

	return &balance, nil
}

// GetForUpdate returns the balance row under FOR UPDATE, inserting a
// zero-initialized row first when absent. Must run inside a transaction so
// the lock persists until commit.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, key ledger.Key) (*entity.StockBalance, error) {
	balance, err := r.selectForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}

	// First movement for this key: create the row, then lock it. ON CONFLICT
	// DO NOTHING absorbs the race with a concurrent first movement.
	if err := r.insertZeroRow(ctx, key); err != nil {
		return nil, err
	}

	balance, err = r.selectForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("balance row vanished after insert: %s", key)
	}

	return balance, nil
}

func (r *BalanceRepo) selectForUpdate(ctx context.Context, key ledger.Key) (*entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(balancesTable).
		Where(keyConditions(key)).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balance entity.StockBalance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, postgres.MapError(fmt.Errorf("select balance for update: %w", err), key.String())
	}

	return &balance, nil
}

func (r *BalanceRepo) insertZeroRow(ctx context.Context, key ledger.Key) error {
	zero := entity.NewStockBalance(key.TenantID, key.WarehouseID, key.Sku)

	q := r.builder.Insert(balancesTable).
		Columns(balanceColumns...).
		Values(
			zero.TenantID, zero.WarehouseID, zero.SkuKind, zero.SkuID,
			zero.Available, zero.Reserved, zero.OnOrder, zero.InProduction, zero.Free,
			zero.ValuationRate, zero.TotalValue,
			zero.LastMovementAt, zero.LastPurchaseAt, zero.LastPurchaseRate, zero.LastSaleAt,
			zero.UpdatedAt,
		).
		Suffix("ON CONFLICT (tenant_id, warehouse_id, sku_kind, sku_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert zero balance: %w", err)
	}

	return nil
}

// ListBySku returns balances across all warehouses for a SKU.
func (r *BalanceRepo) ListBySku(ctx context.Context, tenantID id.ID, sku entity.SkuRef) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(balancesTable).
		Where(squirrel.Eq{
			"tenant_id": tenantID,
			"sku_kind":  sku.Kind,
			"sku_id":    sku.ID,
		}).
		OrderBy("warehouse_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// Save persists a mutated balance row.
func (r *BalanceRepo) Save(ctx context.Context, b *entity.StockBalance) error {
	b.UpdatedAt = time.Now().UTC()

	q := r.builder.Update(balancesTable).
		Set("available", b.Available).
		Set("reserved", b.Reserved).
		Set("on_order", b.OnOrder).
		Set("in_production", b.InProduction).
		Set("free", b.Free).
		Set("valuation_rate", b.ValuationRate).
		Set("total_value", b.TotalValue).
		Set("last_movement_at", b.LastMovementAt).
		Set("last_purchase_at", b.LastPurchaseAt).
		Set("last_purchase_rate", b.LastPurchaseRate).
		Set("last_sale_at", b.LastSaleAt).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{
			"tenant_id":    b.TenantID,
			"warehouse_id": b.WarehouseID,
			"sku_kind":     b.SkuKind,
			"sku_id":       b.SkuID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update balance: row not found for %s/%s %s:%s",
			b.TenantID, b.WarehouseID, b.SkuKind, b.SkuID)
	}

	return nil
}
