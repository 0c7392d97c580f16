// Package reports provides read-only stock report projections.
package reports

import (
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// --- Threshold reports (low stock / overstock) ---

// ThresholdFilter selects balances to compare against the SKU master's
// configured min/max quantities.
type ThresholdFilter struct {
	TenantID    id.ID
	WarehouseID *id.ID

	// Pagination
	Limit  int
	Offset int
}

// ThresholdItem is one row of a low-stock or overstock report.
type ThresholdItem struct {
	WarehouseID   id.ID          `db:"warehouse_id" json:"warehouseId"`
	SkuKind       entity.SkuKind `db:"sku_kind" json:"skuKind"`
	SkuID         id.ID          `db:"sku_id" json:"skuId"`
	SkuCode       string         `db:"sku_code" json:"skuCode"`
	SkuName       string         `db:"sku_name" json:"skuName"`
	Available     types.Quantity `db:"available" json:"available"`
	Threshold     types.Quantity `db:"threshold" json:"threshold"`
	ValuationRate types.Money    `db:"valuation_rate" json:"valuationRate"`
	TotalValue    types.Money    `db:"total_value" json:"totalValue"`
}

// --- Movement-velocity reports ---

// VelocityFilter parameterizes slow-moving and fast-moving reports.
type VelocityFilter struct {
	TenantID    id.ID
	WarehouseID *id.ID

	// Days is the lookback window.
	Days int

	// Limit caps the result set (fast-moving is a top-N report).
	Limit int
}

// SlowMovingItem is a SKU with stock on hand and no movement in the window.
type SlowMovingItem struct {
	WarehouseID    id.ID          `db:"warehouse_id" json:"warehouseId"`
	SkuKind        entity.SkuKind `db:"sku_kind" json:"skuKind"`
	SkuID          id.ID          `db:"sku_id" json:"skuId"`
	SkuCode        string         `db:"sku_code" json:"skuCode"`
	SkuName        string         `db:"sku_name" json:"skuName"`
	Available      types.Quantity `db:"available" json:"available"`
	TotalValue     types.Money    `db:"total_value" json:"totalValue"`
	LastMovementAt *time.Time     `db:"last_movement_at" json:"lastMovementAt,omitempty"`
}

// FastMovingItem is a SKU ranked by outward quantity in the window.
type FastMovingItem struct {
	SkuKind         entity.SkuKind `db:"sku_kind" json:"skuKind"`
	SkuID           id.ID          `db:"sku_id" json:"skuId"`
	SkuCode         string         `db:"sku_code" json:"skuCode"`
	SkuName         string         `db:"sku_name" json:"skuName"`
	OutwardQuantity types.Quantity `db:"outward_quantity" json:"outwardQuantity"`
	OutwardValue    types.Money    `db:"outward_value" json:"outwardValue"`
	EntryCount      int64          `db:"entry_count" json:"entryCount"`
}

// --- Movement summary ---

// SummaryFilter parameterizes the grouped movement summary.
type SummaryFilter struct {
	TenantID    id.ID
	BranchID    *id.ID
	WarehouseID *id.ID
	Sku         *entity.SkuRef

	FromDate time.Time
	ToDate   time.Time
}

// SummaryRow aggregates one transaction type over the period.
type SummaryRow struct {
	TxnType         entity.TxnType `db:"txn_type" json:"txnType"`
	InwardQuantity  types.Quantity `db:"inward_quantity" json:"inwardQuantity"`
	OutwardQuantity types.Quantity `db:"outward_quantity" json:"outwardQuantity"`
	InwardValue     types.Money    `db:"inward_value" json:"inwardValue"`
	OutwardValue    types.Money    `db:"outward_value" json:"outwardValue"`
	EntryCount      int64          `db:"entry_count" json:"entryCount"`
}

// MovementSummary is the full grouped report.
type MovementSummary struct {
	FromDate time.Time    `json:"fromDate"`
	ToDate   time.Time    `json:"toDate"`
	Rows     []SummaryRow `json:"rows"`

	// Period totals across all transaction types.
	TotalInward  types.Quantity `json:"totalInward"`
	TotalOutward types.Quantity `json:"totalOutward"`
}
