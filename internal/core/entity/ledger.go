// Package entity provides core domain entities.
package entity

import (
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// SkuKind discriminates the two SKU reference variants.
type SkuKind string

const (
	// SkuKindItem - raw material or component
	SkuKindItem SkuKind = "item"
	// SkuKindProduct - finished good
	SkuKindProduct SkuKind = "product"
)

// SkuRef is a tagged reference to a stock-keeping unit.
// Exactly one variant (item or product) is expressed by Kind; use the
// constructors so the mutual exclusion holds by construction.
type SkuRef struct {
	Kind SkuKind `db:"sku_kind" json:"skuKind"`
	ID   id.ID   `db:"sku_id" json:"skuId"`
}

// ItemRef creates a reference to an item (raw material/component).
func ItemRef(itemID id.ID) SkuRef {
	return SkuRef{Kind: SkuKindItem, ID: itemID}
}

// ProductRef creates a reference to a product (finished good).
func ProductRef(productID id.ID) SkuRef {
	return SkuRef{Kind: SkuKindProduct, ID: productID}
}

// Validate checks the reference invariants.
func (r SkuRef) Validate() error {
	switch r.Kind {
	case SkuKindItem, SkuKindProduct:
	default:
		return apperror.NewValidation("sku reference must be item or product").
			WithDetail("field", "skuKind").
			WithDetail("value", string(r.Kind))
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation("sku reference id is required").
			WithDetail("field", "skuId")
	}
	return nil
}

// IsZero reports whether the reference is unset.
func (r SkuRef) IsZero() bool {
	return r.Kind == "" && id.IsNil(r.ID)
}

// String renders "kind:uuid" for logs and error details.
func (r SkuRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Direction defines movement direction for the stock ledger.
type Direction string

const (
	// DirectionIn increases available quantity
	DirectionIn Direction = "in"
	// DirectionOut decreases available quantity
	DirectionOut Direction = "out"
)

// IsValid reports whether the direction is a known value.
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// TxnType classifies the business event behind a stock movement.
type TxnType string

const (
	TxnReceipt       TxnType = "receipt"
	TxnProductionIn  TxnType = "production_in"
	TxnProductionOut TxnType = "production_out"
	TxnDispatch      TxnType = "dispatch"
	TxnTransferIn    TxnType = "transfer_in"
	TxnTransferOut   TxnType = "transfer_out"
	TxnAdjustment    TxnType = "adjustment"
	TxnScrap         TxnType = "scrap"
)

// IsValid reports whether the transaction type is a known value.
func (t TxnType) IsValid() bool {
	switch t {
	case TxnReceipt, TxnProductionIn, TxnProductionOut, TxnDispatch,
		TxnTransferIn, TxnTransferOut, TxnAdjustment, TxnScrap:
		return true
	}
	return false
}

// ImpliedDirection returns the direction fixed by the transaction type.
// Adjustments carry their own direction, so ok is false for them.
func (t TxnType) ImpliedDirection() (Direction, bool) {
	switch t {
	case TxnReceipt, TxnProductionIn, TxnTransferIn:
		return DirectionIn, true
	case TxnDispatch, TxnProductionOut, TxnTransferOut, TxnScrap:
		return DirectionOut, true
	}
	return "", false
}

// Reference points at the business document that originated a movement.
type Reference struct {
	// Type is the document type (e.g. "GoodsReceipt", "SalesDispatch")
	Type string `db:"ref_type" json:"refType"`

	// ID is the document id
	ID id.ID `db:"ref_id" json:"refId"`

	// Number is the optional human-readable document number
	Number *string `db:"ref_number" json:"refNumber,omitempty"`
}

// LedgerEntry is one immutable, append-only record of a single stock
// movement. Entries are never updated except by reconciliation, which
// rewrites only the two balance snapshot fields; entries are never deleted.
type LedgerEntry struct {
	// ID is the primary key (UUIDv7, so insertion-ordered)
	ID id.ID `db:"id" json:"id"`

	// Identity
	TenantID    id.ID `db:"tenant_id" json:"tenantId"`
	BranchID    id.ID `db:"branch_id" json:"branchId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// SKU reference (tagged union, flattened for storage)
	SkuKind SkuKind `db:"sku_kind" json:"skuKind"`
	SkuID   id.ID   `db:"sku_id" json:"skuId"`

	// Transaction
	TxnType TxnType   `db:"txn_type" json:"txnType"`
	TxnDate time.Time `db:"txn_date" json:"txnDate"`

	// Originating document
	RefType   string  `db:"ref_type" json:"refType"`
	RefID     id.ID   `db:"ref_id" json:"refId"`
	RefNumber *string `db:"ref_number" json:"refNumber,omitempty"`

	// Movement: exactly one of the two is non-zero, always positive
	QuantityIn  types.Quantity `db:"quantity_in" json:"quantityIn"`
	QuantityOut types.Quantity `db:"quantity_out" json:"quantityOut"`
	UOM         string         `db:"uom" json:"uom"`

	// Valuation
	UnitCost   types.Money `db:"unit_cost" json:"unitCost"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// Post-movement snapshot (running totals as of this entry)
	BalanceQuantity types.Quantity `db:"balance_quantity" json:"balanceQuantity"`
	BalanceValue    types.Money    `db:"balance_value" json:"balanceValue"`

	// Extras
	Batch     *string `db:"batch" json:"batch,omitempty"`
	Narration *string `db:"narration" json:"narration,omitempty"`

	// Audit
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Sku returns the tagged SKU reference.
func (e *LedgerEntry) Sku() SkuRef {
	return SkuRef{Kind: e.SkuKind, ID: e.SkuID}
}

// Direction derives the movement direction from the quantity split.
func (e *LedgerEntry) Direction() Direction {
	if e.QuantityOut.IsPositive() {
		return DirectionOut
	}
	return DirectionIn
}

// MovedQuantity returns the non-zero side of the quantity split.
func (e *LedgerEntry) MovedQuantity() types.Quantity {
	if e.QuantityOut.IsPositive() {
		return e.QuantityOut
	}
	return e.QuantityIn
}

// SignedQuantity returns quantity with sign based on direction.
// Inward = positive, outward = negative.
func (e *LedgerEntry) SignedQuantity() types.Quantity {
	if e.QuantityOut.IsPositive() {
		return e.QuantityOut.Neg()
	}
	return e.QuantityIn
}
