package ledger_repo

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

func TestKeyConditions(t *testing.T) {
	key := ledger.Key{
		TenantID:    id.New(),
		WarehouseID: id.New(),
		Sku:         entity.ItemRef(id.New()),
	}

	sql, args, err := squirrel.Select("id").
		From(entriesTable).
		Where(keyConditions(key)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "tenant_id = ")
	assert.Contains(t, sql, "warehouse_id = ")
	assert.Contains(t, sql, "sku_kind = ")
	assert.Contains(t, sql, "sku_id = ")
	assert.Len(t, args, 4)
}

func TestFilterConditions(t *testing.T) {
	repo := NewEntryRepo(nil)

	warehouseID := id.New()
	sku := entity.ProductRef(id.New())
	batch := "LOT-3"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	filter := ledger.EntryFilter{
		TenantID:    id.New(),
		WarehouseID: &warehouseID,
		Sku:         &sku,
		TxnTypes:    []entity.TxnType{entity.TxnReceipt, entity.TxnDispatch},
		FromDate:    &from,
		ToDate:      &to,
		Batch:       &batch,
	}

	q := repo.builder.Select("COUNT(*)").From(entriesTable)
	for _, cond := range repo.filterConditions(filter) {
		q = q.Where(cond)
	}

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "txn_type IN ")
	assert.Contains(t, sql, "txn_date >= ")
	assert.Contains(t, sql, "txn_date <= ")
	assert.Contains(t, sql, "batch = ")
	// tenant + warehouse + kind + id + 2 types + 2 dates + batch
	assert.Len(t, args, 9)
}

func TestFilterConditions_TenantOnly(t *testing.T) {
	repo := NewEntryRepo(nil)

	conds := repo.filterConditions(ledger.EntryFilter{TenantID: id.New()})
	require.Len(t, conds, 1)

	sql, args, err := conds[0].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "tenant_id = ?", sql)
	assert.Len(t, args, 1)
}
