// Package sku_repo provides the PostgreSQL implementation of the SKU master
// read model.
package sku_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/sku"
	"stockledger/internal/infrastructure/storage/postgres"
)

const mastersTable = "sku_masters"

var masterColumns = []string{
	"id", "tenant_id", "kind", "code", "name", "base_uom",
	"costing_policy", "standard_cost",
	"min_quantity", "max_quantity",
}

// Compile-time check.
var _ sku.Reader = (*MasterRepo)(nil)

// MasterRepo implements sku.Reader on PostgreSQL.
type MasterRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewMasterRepo creates a new SKU master repository.
func NewMasterRepo(txm *postgres.TxManager) *MasterRepo {
	return &MasterRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetCosting resolves the costing policy and standard cost for a SKU.
func (r *MasterRepo) GetCosting(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (sku.Costing, error) {
	q := r.builder.Select("costing_policy", "standard_cost").
		From(mastersTable).
		Where(refConditions(tenantID, ref)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return sku.Costing{}, fmt.Errorf("build query: %w", err)
	}

	var costing sku.Costing
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &costing, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return sku.Costing{}, apperror.NewNotFound("sku", ref.String())
		}
		return sku.Costing{}, fmt.Errorf("get costing: %w", err)
	}

	return costing, nil
}

// GetByRef retrieves the full master record.
func (r *MasterRepo) GetByRef(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (*sku.Master, error) {
	q := r.builder.Select(masterColumns...).
		From(mastersTable).
		Where(refConditions(tenantID, ref)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var master sku.Master
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &master, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sku", ref.String())
		}
		return nil, fmt.Errorf("get sku master: %w", err)
	}

	return &master, nil
}

func refConditions(tenantID id.ID, ref entity.SkuRef) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id": tenantID,
		"kind":      ref.Kind,
		"id":        ref.ID,
	}
}
