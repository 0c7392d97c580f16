package sku

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Reader provides read-only access to the SKU master.
// Implementations must not cache across transactions: the costing policy is
// resolved once per movement, inside the movement's transaction.
type Reader interface {
	// GetCosting resolves the costing policy and standard cost for a SKU.
	// Returns apperror CodeNotFound when the SKU does not exist.
	GetCosting(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (Costing, error)

	// GetByRef retrieves the full master record.
	GetByRef(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (*Master, error)
}
