package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func TestSkuRef_Constructors(t *testing.T) {
	itemID := id.New()
	ref := ItemRef(itemID)
	assert.Equal(t, SkuKindItem, ref.Kind)
	assert.Equal(t, itemID, ref.ID)
	require.NoError(t, ref.Validate())

	ref = ProductRef(itemID)
	assert.Equal(t, SkuKindProduct, ref.Kind)
	require.NoError(t, ref.Validate())
}

func TestSkuRef_Validate(t *testing.T) {
	tests := []struct {
		name string
		ref  SkuRef
		ok   bool
	}{
		{"item", ItemRef(id.New()), true},
		{"product", ProductRef(id.New()), true},
		{"empty kind", SkuRef{ID: id.New()}, false},
		{"unknown kind", SkuRef{Kind: "bundle", ID: id.New()}, false},
		{"nil id", SkuRef{Kind: SkuKindItem}, false},
		{"zero", SkuRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTxnType_ImpliedDirection(t *testing.T) {
	inward := []TxnType{TxnReceipt, TxnProductionIn, TxnTransferIn}
	for _, tt := range inward {
		dir, ok := tt.ImpliedDirection()
		assert.True(t, ok, "%s", tt)
		assert.Equal(t, DirectionIn, dir, "%s", tt)
	}

	outward := []TxnType{TxnDispatch, TxnProductionOut, TxnTransferOut, TxnScrap}
	for _, tt := range outward {
		dir, ok := tt.ImpliedDirection()
		assert.True(t, ok, "%s", tt)
		assert.Equal(t, DirectionOut, dir, "%s", tt)
	}

	_, ok := TxnAdjustment.ImpliedDirection()
	assert.False(t, ok)
}

func TestLedgerEntry_Directions(t *testing.T) {
	in := LedgerEntry{QuantityIn: types.NewQuantityFromFloat64(5)}
	assert.Equal(t, DirectionIn, in.Direction())
	assert.Equal(t, types.NewQuantityFromFloat64(5), in.MovedQuantity())
	assert.Equal(t, types.NewQuantityFromFloat64(5), in.SignedQuantity())

	out := LedgerEntry{QuantityOut: types.NewQuantityFromFloat64(3)}
	assert.Equal(t, DirectionOut, out.Direction())
	assert.Equal(t, types.NewQuantityFromFloat64(3), out.MovedQuantity())
	assert.Equal(t, types.NewQuantityFromFloat64(-3), out.SignedQuantity())
}

func TestStockBalance_SetValuation(t *testing.T) {
	b := NewStockBalance(id.New(), id.New(), ItemRef(id.New()))

	b.SetValuation(types.NewQuantityFromFloat64(10), types.MustMoney("125.55555"), types.MustMoney("12.55555"))
	assert.Equal(t, types.NewQuantityFromFloat64(10), b.Available)
	assert.True(t, types.MustMoney("125.5556").Equal(b.TotalValue), "got %s", b.TotalValue)
	assert.True(t, types.MustMoney("12.5556").Equal(b.ValuationRate), "got %s", b.ValuationRate)

	// Zero quantity resets valuation entirely
	b.SetValuation(0, types.MustMoney("0.0001"), types.MustMoney("99"))
	assert.True(t, b.TotalValue.IsZero())
	assert.True(t, b.ValuationRate.IsZero())
}

func TestStockBalance_RecalcFree(t *testing.T) {
	b := NewStockBalance(id.New(), id.New(), ItemRef(id.New()))
	b.Available = types.NewQuantityFromFloat64(100)
	b.Reserved = types.NewQuantityFromFloat64(30)
	b.RecalcFree()
	assert.Equal(t, types.NewQuantityFromFloat64(70), b.Free)
}
