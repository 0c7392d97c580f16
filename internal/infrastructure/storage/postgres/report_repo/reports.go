// Package report_repo provides PostgreSQL implementations for stock report
// repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LowStock returns balances at or below the SKU's configured minimum.
func (r *ReportRepo) LowStock(ctx context.Context, filter reports.ThresholdFilter) ([]reports.ThresholdItem, error) {
	return r.thresholdReport(ctx, filter, "b.available <= m.min_quantity", "m.min_quantity")
}

// Overstock returns balances at or above the SKU's configured maximum.
func (r *ReportRepo) Overstock(ctx context.Context, filter reports.ThresholdFilter) ([]reports.ThresholdItem, error) {
	return r.thresholdReport(ctx, filter, "b.available >= m.max_quantity", "m.max_quantity")
}

func (r *ReportRepo) thresholdReport(ctx context.Context, filter reports.ThresholdFilter, condition, thresholdCol string) ([]reports.ThresholdItem, error) {
	query := fmt.Sprintf(`
		SELECT
			b.warehouse_id,
			b.sku_kind,
			b.sku_id,
			m.code AS sku_code,
			m.name AS sku_name,
			b.available,
			%s AS threshold,
			b.valuation_rate,
			b.total_value
		FROM stock_balances b
		JOIN sku_masters m ON m.tenant_id = b.tenant_id
			AND m.kind = b.sku_kind AND m.id = b.sku_id
		WHERE b.tenant_id = $1
			AND %s IS NOT NULL
			AND %s
	`, thresholdCol, thresholdCol, condition)
	args := []any{filter.TenantID}
	argIndex := 2

	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND b.warehouse_id = $%d", argIndex)
		args = append(args, *filter.WarehouseID)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY m.code, b.warehouse_id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	var items []reports.ThresholdItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("threshold report: %w", err)
	}

	return items, nil
}

// SlowMoving returns stocked SKUs with no ledger movement in the window.
func (r *ReportRepo) SlowMoving(ctx context.Context, filter reports.VelocityFilter) ([]reports.SlowMovingItem, error) {
	query := `
		SELECT
			b.warehouse_id,
			b.sku_kind,
			b.sku_id,
			m.code AS sku_code,
			m.name AS sku_name,
			b.available,
			b.total_value,
			b.last_movement_at
		FROM stock_balances b
		JOIN sku_masters m ON m.tenant_id = b.tenant_id
			AND m.kind = b.sku_kind AND m.id = b.sku_id
		WHERE b.tenant_id = $1
			AND b.available > 0
			AND (b.last_movement_at IS NULL
				OR b.last_movement_at < NOW() - make_interval(days => $2))
	`
	args := []any{filter.TenantID, filter.Days}
	argIndex := 3

	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND b.warehouse_id = $%d", argIndex)
		args = append(args, *filter.WarehouseID)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY b.last_movement_at ASC NULLS FIRST LIMIT $%d", argIndex)
	args = append(args, filter.Limit)

	var items []reports.SlowMovingItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("slow moving report: %w", err)
	}

	return items, nil
}

// FastMoving returns SKUs ranked by outward quantity in the window.
func (r *ReportRepo) FastMoving(ctx context.Context, filter reports.VelocityFilter) ([]reports.FastMovingItem, error) {
	query := `
		SELECT
			e.sku_kind,
			e.sku_id,
			m.code AS sku_code,
			m.name AS sku_name,
			SUM(e.quantity_out) AS outward_quantity,
			SUM(CASE WHEN e.quantity_out > 0 THEN e.total_value ELSE 0 END) AS outward_value,
			COUNT(*) AS entry_count
		FROM stock_ledger_entries e
		JOIN sku_masters m ON m.tenant_id = e.tenant_id
			AND m.kind = e.sku_kind AND m.id = e.sku_id
		WHERE e.tenant_id = $1
			AND e.quantity_out > 0
			AND e.txn_date >= NOW() - make_interval(days => $2)
	`
	args := []any{filter.TenantID, filter.Days}
	argIndex := 3

	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND e.warehouse_id = $%d", argIndex)
		args = append(args, *filter.WarehouseID)
		argIndex++
	}

	query += fmt.Sprintf(`
		GROUP BY e.sku_kind, e.sku_id, m.code, m.name
		ORDER BY outward_quantity DESC
		LIMIT $%d`, argIndex)
	args = append(args, filter.Limit)

	var items []reports.FastMovingItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("fast moving report: %w", err)
	}

	return items, nil
}

// MovementSummary aggregates ledger entries by transaction type.
func (r *ReportRepo) MovementSummary(ctx context.Context, filter reports.SummaryFilter) ([]reports.SummaryRow, error) {
	query := `
		SELECT
			e.txn_type,
			COALESCE(SUM(e.quantity_in), 0) AS inward_quantity,
			COALESCE(SUM(e.quantity_out), 0) AS outward_quantity,
			COALESCE(SUM(CASE WHEN e.quantity_in > 0 THEN e.total_value ELSE 0 END), 0) AS inward_value,
			COALESCE(SUM(CASE WHEN e.quantity_out > 0 THEN e.total_value ELSE 0 END), 0) AS outward_value,
			COUNT(*) AS entry_count
		FROM stock_ledger_entries e
		WHERE e.tenant_id = $1
			AND e.txn_date >= $2
			AND e.txn_date <= $3
	`
	args := []any{filter.TenantID, filter.FromDate, filter.ToDate}
	argIndex := 4

	if filter.BranchID != nil {
		query += fmt.Sprintf(" AND e.branch_id = $%d", argIndex)
		args = append(args, *filter.BranchID)
		argIndex++
	}
	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND e.warehouse_id = $%d", argIndex)
		args = append(args, *filter.WarehouseID)
		argIndex++
	}
	if filter.Sku != nil {
		query += fmt.Sprintf(" AND e.sku_kind = $%d AND e.sku_id = $%d", argIndex, argIndex+1)
		args = append(args, filter.Sku.Kind, filter.Sku.ID)
	}

	query += " GROUP BY e.txn_type ORDER BY e.txn_type"

	var rows []reports.SummaryRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("movement summary: %w", err)
	}

	return rows, nil
}
