package entity

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// StockBalance is the materialized current-state row per
// (tenant, warehouse, SKU). Created lazily on first movement for a key,
// never deleted, reset only by reconciliation.
//
// Invariant: TotalValue ≈ Available × ValuationRate within rounding
// tolerance; Free is recomputed on every mutation of Available or Reserved.
type StockBalance struct {
	// Dimensions (unique key)
	TenantID    id.ID   `db:"tenant_id" json:"tenantId"`
	WarehouseID id.ID   `db:"warehouse_id" json:"warehouseId"`
	SkuKind     SkuKind `db:"sku_kind" json:"skuKind"`
	SkuID       id.ID   `db:"sku_id" json:"skuId"`

	// Quantity buckets
	Available    types.Quantity `db:"available" json:"available"`
	Reserved     types.Quantity `db:"reserved" json:"reserved"`
	OnOrder      types.Quantity `db:"on_order" json:"onOrder"`
	InProduction types.Quantity `db:"in_production" json:"inProduction"`
	Free         types.Quantity `db:"free" json:"free"`

	// Valuation
	ValuationRate types.Money `db:"valuation_rate" json:"valuationRate"`
	TotalValue    types.Money `db:"total_value" json:"totalValue"`

	// Bookkeeping
	LastMovementAt   *time.Time  `db:"last_movement_at" json:"lastMovementAt,omitempty"`
	LastPurchaseAt   *time.Time  `db:"last_purchase_at" json:"lastPurchaseAt,omitempty"`
	LastPurchaseRate types.Money `db:"last_purchase_rate" json:"lastPurchaseRate"`
	LastSaleAt       *time.Time  `db:"last_sale_at" json:"lastSaleAt,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockBalance creates a zero-initialized balance row for a key.
func NewStockBalance(tenantID, warehouseID id.ID, sku SkuRef) *StockBalance {
	return &StockBalance{
		TenantID:         tenantID,
		WarehouseID:      warehouseID,
		SkuKind:          sku.Kind,
		SkuID:            sku.ID,
		ValuationRate:    types.Zero(),
		TotalValue:       types.Zero(),
		LastPurchaseRate: types.Zero(),
		UpdatedAt:        time.Now().UTC(),
	}
}

// Sku returns the tagged SKU reference.
func (b *StockBalance) Sku() SkuRef {
	return SkuRef{Kind: b.SkuKind, ID: b.SkuID}
}

// RecalcFree recomputes the derived free quantity.
// Must be called after every change to Available or Reserved.
func (b *StockBalance) RecalcFree() {
	b.Free = b.Available - b.Reserved
}

// SetValuation updates the valuation triple. When quantity reaches zero
// both value and rate reset to zero so rounding residue cannot accumulate.
func (b *StockBalance) SetValuation(quantity types.Quantity, value, rate types.Money) {
	b.Available = quantity
	if quantity.IsZero() {
		b.TotalValue = types.Zero()
		b.ValuationRate = types.Zero()
	} else {
		b.TotalValue = types.RoundMoney(value)
		b.ValuationRate = types.RoundMoney(rate)
	}
	b.RecalcFree()
}
