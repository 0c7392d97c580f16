package sku

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func TestCostingPolicy_IsValid(t *testing.T) {
	assert.True(t, PolicyWeightedAverage.IsValid())
	assert.True(t, PolicyFIFO.IsValid())
	assert.True(t, PolicyStandard.IsValid())
	assert.False(t, CostingPolicy("lifo").IsValid())
	assert.False(t, CostingPolicy("").IsValid())
}

func TestMockReader(t *testing.T) {
	reader := NewMockReader()
	tenantID := id.New()
	itemID := id.New()

	reader.Register(&Master{
		ID:            itemID,
		TenantID:      tenantID,
		Kind:          entity.SkuKindItem,
		Code:          "RM-010",
		Name:          "Copper wire",
		BaseUOM:       "m",
		CostingPolicy: PolicyStandard,
		StandardCost:  types.MustMoney("3.5"),
	})

	costing, err := reader.GetCosting(context.Background(), tenantID, entity.ItemRef(itemID))
	require.NoError(t, err)
	assert.Equal(t, PolicyStandard, costing.Policy)
	assert.True(t, types.MustMoney("3.5").Equal(costing.StandardCost))

	// Same id under the other kind is a different SKU
	_, err = reader.GetCosting(context.Background(), tenantID, entity.ProductRef(itemID))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = reader.GetByRef(context.Background(), id.New(), entity.ItemRef(itemID))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
