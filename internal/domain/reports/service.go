package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetLowStock returns SKUs at or below their configured minimum quantity.
func (s *Service) GetLowStock(ctx context.Context, filter ThresholdFilter) ([]ThresholdItem, error) {
	applyThresholdDefaults(&filter)

	items, err := s.repo.LowStock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}

	return items, nil
}

// GetOverstock returns SKUs at or above their configured maximum quantity.
func (s *Service) GetOverstock(ctx context.Context, filter ThresholdFilter) ([]ThresholdItem, error) {
	applyThresholdDefaults(&filter)

	items, err := s.repo.Overstock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("overstock report: %w", err)
	}

	return items, nil
}

// GetSlowMoving returns stocked SKUs with no movement in the lookback window.
func (s *Service) GetSlowMoving(ctx context.Context, filter VelocityFilter) ([]SlowMovingItem, error) {
	applyVelocityDefaults(&filter)

	items, err := s.repo.SlowMoving(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("slow moving report: %w", err)
	}

	return items, nil
}

// GetFastMoving returns SKUs ranked by outward quantity in the window.
func (s *Service) GetFastMoving(ctx context.Context, filter VelocityFilter) ([]FastMovingItem, error) {
	applyVelocityDefaults(&filter)

	items, err := s.repo.FastMoving(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fast moving report: %w", err)
	}

	return items, nil
}

// GetMovementSummary aggregates ledger entries by transaction type over the
// period. Defaults to the last 30 days when no dates are given.
func (s *Service) GetMovementSummary(ctx context.Context, filter SummaryFilter) (*MovementSummary, error) {
	if filter.ToDate.IsZero() {
		filter.ToDate = time.Now()
	}
	if filter.FromDate.IsZero() {
		filter.FromDate = filter.ToDate.AddDate(0, 0, -30)
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	rows, err := s.repo.MovementSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("movement summary report: %w", err)
	}

	summary := &MovementSummary{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Rows:     rows,
	}
	for _, row := range rows {
		summary.TotalInward += row.InwardQuantity
		summary.TotalOutward += row.OutwardQuantity
	}

	return summary, nil
}

func applyThresholdDefaults(filter *ThresholdFilter) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
}

func applyVelocityDefaults(filter *VelocityFilter) {
	if filter.Days <= 0 {
		filter.Days = 90
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
}
