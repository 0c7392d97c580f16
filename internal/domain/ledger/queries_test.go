package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/sku"
)

func TestQueries_GetBalance(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	// Untouched key reports no balance
	bal, err := queries.GetBalance(ctx, e.key(ref))
	require.NoError(t, err)
	assert.Nil(t, bal)

	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 10, "10", 1))
	require.NoError(t, err)

	bal, err = queries.GetBalance(ctx, e.key(ref))
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.Equal(t, types.NewQuantityFromFloat64(10), bal.Available)

	// Invalid key is rejected before hitting the store
	_, err = queries.GetBalance(ctx, Key{})
	require.Error(t, err)
}

func TestQueries_GetBalancesBySku(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	otherWarehouse := id.New()
	_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 10, "10", 1))
	require.NoError(t, err)

	input := e.movement(ref, entity.TxnReceipt, 4, "10", 2)
	input.WarehouseID = otherWarehouse
	_, err = e.recorder.RecordMovement(ctx, input)
	require.NoError(t, err)

	balances, err := queries.GetBalancesBySku(ctx, e.tenantID, ref)
	require.NoError(t, err)
	assert.Len(t, balances, 2)

	var total types.Quantity
	for _, b := range balances {
		total += b.Available
	}
	assert.Equal(t, types.NewQuantityFromFloat64(14), total)
}

func TestQueries_ListEntries(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	for day := 1; day <= 5; day++ {
		_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 1, "10", day))
		require.NoError(t, err)
	}

	page, err := queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	require.Len(t, page.Items, 2)

	// Newest first
	assert.True(t, page.Items[0].TxnDate.After(page.Items[1].TxnDate))

	page, err = queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID, Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestQueries_ListEntries_Defaults(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	page, err := queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID})
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)

	page, err = queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID, Limit: 9999, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 500, page.Limit)
	assert.Equal(t, 0, page.Offset)

	_, err = queries.ListEntries(ctx, EntryFilter{})
	require.Error(t, err)
}

func TestQueries_ListEntries_Filters(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 10, "10", 1))
	require.NoError(t, err)
	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnDispatch, 3, "", 2))
	require.NoError(t, err)

	batch := "LOT-7"
	input := e.movement(ref, entity.TxnReceipt, 5, "11", 3)
	input.Batch = &batch
	_, err = e.recorder.RecordMovement(ctx, input)
	require.NoError(t, err)

	page, err := queries.ListEntries(ctx, EntryFilter{
		TenantID: e.tenantID,
		TxnTypes: []entity.TxnType{entity.TxnDispatch},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.TxnDispatch, page.Items[0].TxnType)

	page, err = queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID, Batch: &batch})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, types.NewQuantityFromFloat64(5), page.Items[0].QuantityIn)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	page, err = queries.ListEntries(ctx, EntryFilter{TenantID: e.tenantID, FromDate: &from})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestQueries_GetBalanceAsOf(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	queries := NewQueries(e.store, e.store)

	_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 100, "10", 1))
	require.NoError(t, err)
	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnDispatch, 30, "", 5))
	require.NoError(t, err)

	asOf := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	qty, err := queries.GetBalanceAsOf(ctx, e.key(ref), asOf)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(100), qty)

	asOf = time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	qty, err = queries.GetBalanceAsOf(ctx, e.key(ref), asOf)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(70), qty)
}
