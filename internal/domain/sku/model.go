// Package sku provides the read-only SKU master dependency of the ledger
// engine. The engine does not own SKU records; it only resolves the costing
// policy (and the standard cost for standard-costed SKUs) plus the stock
// thresholds used by reports.
package sku

import (
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// CostingPolicy is the valuation algorithm applied to a SKU's movements.
type CostingPolicy string

const (
	PolicyWeightedAverage CostingPolicy = "weighted_average"
	PolicyFIFO            CostingPolicy = "fifo"
	PolicyStandard        CostingPolicy = "standard"
)

// DefaultPolicy applies when the SKU master leaves the policy unset.
const DefaultPolicy = PolicyWeightedAverage

// IsValid reports whether the policy is a known value.
func (p CostingPolicy) IsValid() bool {
	switch p {
	case PolicyWeightedAverage, PolicyFIFO, PolicyStandard:
		return true
	}
	return false
}

// Costing is the per-SKU fact set the ledger engine consumes on every
// movement.
type Costing struct {
	Policy       CostingPolicy `db:"costing_policy" json:"costingPolicy"`
	StandardCost types.Money   `db:"standard_cost" json:"standardCost"`
}

// Master is the SKU master read model.
type Master struct {
	ID       id.ID          `db:"id" json:"id"`
	TenantID id.ID          `db:"tenant_id" json:"tenantId"`
	Kind     entity.SkuKind `db:"kind" json:"kind"`
	Code     string         `db:"code" json:"code"`
	Name     string         `db:"name" json:"name"`

	// BaseUOM is the unit of measure movements are recorded in
	BaseUOM string `db:"base_uom" json:"baseUom"`

	CostingPolicy CostingPolicy `db:"costing_policy" json:"costingPolicy"`
	StandardCost  types.Money   `db:"standard_cost" json:"standardCost"`

	// Stock thresholds for low/over-stock reporting
	MinQuantity *types.Quantity `db:"min_quantity" json:"minQuantity,omitempty"`
	MaxQuantity *types.Quantity `db:"max_quantity" json:"maxQuantity,omitempty"`
}

// Costing returns the engine-facing fact set.
func (m *Master) Costing() Costing {
	return Costing{Policy: m.CostingPolicy, StandardCost: m.StandardCost}
}
