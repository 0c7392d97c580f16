package reports

import "context"

// Repository is the read side for stock reports. Implementations query the
// ledger and balance tables joined with the SKU masters.
type Repository interface {
	// LowStock returns balances whose available quantity is at or below the
	// SKU's configured minimum. SKUs without a minimum are skipped.
	LowStock(ctx context.Context, filter ThresholdFilter) ([]ThresholdItem, error)

	// Overstock returns balances whose available quantity is at or above the
	// SKU's configured maximum. SKUs without a maximum are skipped.
	Overstock(ctx context.Context, filter ThresholdFilter) ([]ThresholdItem, error)

	// SlowMoving returns SKUs with stock on hand and no ledger movement
	// within the lookback window.
	SlowMoving(ctx context.Context, filter VelocityFilter) ([]SlowMovingItem, error)

	// FastMoving returns SKUs ranked by outward quantity within the window.
	FastMoving(ctx context.Context, filter VelocityFilter) ([]FastMovingItem, error)

	// MovementSummary aggregates ledger entries by transaction type over
	// the period.
	MovementSummary(ctx context.Context, filter SummaryFilter) ([]SummaryRow, error)
}
