package ledger

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// LayerConsumption records how much of one cost layer an outward movement
// consumed.
type LayerConsumption struct {
	EntryID  id.ID          `json:"entryId"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost types.Money    `json:"unitCost"`
}

// fifoTolerance is the slack allowed between the requested quantity and
// what the layers can cover: 0.001 units, absorbing fixed-point residue.
const fifoTolerance types.Quantity = 10

// fifoConsumer derives cost-layer consumption for FIFO-costed SKUs by
// replaying prior inward entries.
//
// "Already consumed" is re-derived from total historical outward quantity
// on every call. That makes each outward movement O(ledger length) for the
// key; an explicit per-layer remaining index is the planned fix if volumes
// demand it.
type fifoConsumer struct {
	entries EntryRepository
}

// consume walks cost layers oldest-first and returns the total cost of
// covering quantityNeeded, plus the per-layer breakdown. Must run inside
// the movement's transaction, after the balance row lock is held.
func (c *fifoConsumer) consume(ctx context.Context, key Key, quantityNeeded types.Quantity) (types.Money, []LayerConsumption, error) {
	layers, err := c.entries.ListInward(ctx, key)
	if err != nil {
		return types.Zero(), nil, err
	}

	alreadyConsumed, err := c.entries.SumOutward(ctx, key)
	if err != nil {
		return types.Zero(), nil, err
	}

	remaining := quantityNeeded
	totalCost := types.Zero()
	var consumptions []LayerConsumption

	for _, layer := range layers {
		if remaining.IsZero() {
			break
		}

		capacity := layer.QuantityIn

		// Skip layers (or parts of layers) exhausted by prior history.
		if alreadyConsumed >= capacity {
			alreadyConsumed -= capacity
			continue
		}
		capacity -= alreadyConsumed
		alreadyConsumed = 0

		take := capacity
		if remaining < take {
			take = remaining
		}

		totalCost = totalCost.Add(take.Decimal().Mul(layer.UnitCost))
		consumptions = append(consumptions, LayerConsumption{
			EntryID:  layer.ID,
			Quantity: take,
			UnitCost: layer.UnitCost,
		})
		remaining -= take
	}

	if remaining > fifoTolerance {
		covered := quantityNeeded - remaining
		return types.Zero(), nil, apperror.NewFIFOExhausted(
			key.Sku.String(),
			quantityNeeded.Float64(),
			covered.Float64(),
		)
	}

	return totalCost, consumptions, nil
}
