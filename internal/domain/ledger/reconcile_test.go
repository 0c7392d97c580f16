package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/sku"
)

func TestRecalculateBalance_RepairsTamperedState(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	key := e.key(ref)

	first, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 100, "10", 1))
	require.NoError(t, err)
	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnDispatch, 30, "", 2))
	require.NoError(t, err)

	// Corrupt the first entry's snapshot and the cached balance
	require.NoError(t, e.store.UpdateSnapshot(ctx, first.ID,
		types.NewQuantityFromFloat64(999), types.MustMoney("999")))

	bal, err := e.store.Get(ctx, key)
	require.NoError(t, err)
	bal.Available = types.NewQuantityFromFloat64(5)
	bal.TotalValue = types.MustMoney("1")
	bal.RecalcFree()
	require.NoError(t, e.store.Save(ctx, bal))

	reconciler := NewReconciler(e.store, e.store, e.store)
	qty, value, err := reconciler.RecalculateBalance(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(70), qty)
	assertMoney(t, "700", value)

	// Snapshots follow the replay again
	history, err := e.store.ListForKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(100), history[0].BalanceQuantity)
	assertMoney(t, "1000", history[0].BalanceValue)
	assert.Equal(t, types.NewQuantityFromFloat64(70), history[1].BalanceQuantity)
	assertMoney(t, "700", history[1].BalanceValue)

	// Cache matches the ledger
	bal, err = e.store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(70), bal.Available)
	assertMoney(t, "700", bal.TotalValue)
	assertMoney(t, "10", bal.ValuationRate)
}

func TestRecalculateBalance_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	key := e.key(ref)

	_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 40, "12.5", 1))
	require.NoError(t, err)
	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnDispatch, 10, "", 2))
	require.NoError(t, err)

	reconciler := NewReconciler(e.store, e.store, e.store)

	qty1, value1, err := reconciler.RecalculateBalance(ctx, key)
	require.NoError(t, err)
	history1, err := e.store.ListForKey(ctx, key)
	require.NoError(t, err)

	qty2, value2, err := reconciler.RecalculateBalance(ctx, key)
	require.NoError(t, err)
	history2, err := e.store.ListForKey(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, qty1, qty2)
	assert.True(t, value1.Equal(value2), "want %s, got %s", value1, value2)
	require.Equal(t, len(history1), len(history2))
	for i := range history1 {
		assert.Equal(t, history1[i].BalanceQuantity, history2[i].BalanceQuantity)
		assert.True(t, history1[i].BalanceValue.Equal(history2[i].BalanceValue))
	}
}

func TestRecalculateBalance_EmptyLedger(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()

	reconciler := NewReconciler(e.store, e.store, e.store)
	qty, value, err := reconciler.RecalculateBalance(ctx, e.key(ref))
	require.NoError(t, err)
	assert.True(t, qty.IsZero())
	assertMoney(t, "0", value)
}

func TestRecalculateBalance_ClampsNegativeValue(t *testing.T) {
	e := newTestEngine(t)
	ref := e.registerItem(sku.PolicyWeightedAverage, types.Zero())
	ctx := context.Background()
	key := e.key(ref)

	// Build a history whose replay would momentarily round value below
	// zero, then drain to zero quantity.
	_, err := e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnReceipt, 3, "0.3333", 1))
	require.NoError(t, err)
	_, err = e.recorder.RecordMovement(ctx, e.movement(ref, entity.TxnDispatch, 3, "", 2))
	require.NoError(t, err)

	reconciler := NewReconciler(e.store, e.store, e.store)
	qty, value, err := reconciler.RecalculateBalance(ctx, key)
	require.NoError(t, err)
	assert.True(t, qty.IsZero())
	assert.False(t, value.IsNegative())
}
