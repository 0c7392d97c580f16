package ledger

import (
	"stockledger/internal/core/entity"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/sku"
)

// valuation is the computed effect of one movement: what gets recorded on
// the entry and what the balance row becomes afterwards.
type valuation struct {
	// Recorded on the entry
	UnitCost   types.Money
	TotalValue types.Money

	// Post-movement balance state
	Quantity types.Quantity
	Value    types.Money
	Rate     types.Money
}

// valueInward computes the effect of an inward movement.
//
// weighted_average: new rate = (old value + qty×cost) / (old qty + qty).
// fifo: the entry itself becomes a cost layer at its recorded unit cost;
// the cache rate is kept at value/quantity so the rounding-tolerance
// invariant holds.
// standard: unit cost is pinned to the configured standard cost and the
// cache stays at quantity × standard.
func valueInward(bal *entity.StockBalance, qty types.Quantity, unitCost *types.Money, costing sku.Costing) valuation {
	policy := costing.Policy
	if policy == "" {
		policy = sku.DefaultPolicy
	}

	var cost types.Money
	switch {
	case policy == sku.PolicyStandard:
		cost = costing.StandardCost
	case unitCost != nil:
		cost = *unitCost
	case policy == sku.PolicyFIFO && bal.LastPurchaseRate.IsPositive():
		cost = bal.LastPurchaseRate
	default:
		cost = bal.ValuationRate
	}

	total := types.RoundMoney(qty.Decimal().Mul(cost))
	newQty := bal.Available + qty
	newValue := bal.TotalValue.Add(total)

	var rate types.Money
	switch {
	case policy == sku.PolicyStandard:
		rate = costing.StandardCost
		newValue = newQty.Decimal().Mul(costing.StandardCost)
	case newQty.IsZero():
		rate = types.Zero()
	default:
		rate = newValue.Div(newQty.Decimal())
	}

	return valuation{
		UnitCost:   types.RoundMoney(cost),
		TotalValue: total,
		Quantity:   newQty,
		Value:      newValue,
		Rate:       rate,
	}
}

// valueOutwardAverage removes value at the current valuation rate;
// the rate itself is unchanged (reset to zero when quantity hits zero,
// which SetValuation handles).
func valueOutwardAverage(bal *entity.StockBalance, qty types.Quantity) valuation {
	cost := bal.ValuationRate
	total := types.RoundMoney(qty.Decimal().Mul(cost))
	return valuation{
		UnitCost:   types.RoundMoney(cost),
		TotalValue: total,
		Quantity:   bal.Available - qty,
		Value:      bal.TotalValue.Sub(total),
		Rate:       bal.ValuationRate,
	}
}

// valueOutwardStandard removes value at the pinned standard cost.
func valueOutwardStandard(bal *entity.StockBalance, qty types.Quantity, standardCost types.Money) valuation {
	total := types.RoundMoney(qty.Decimal().Mul(standardCost))
	newQty := bal.Available - qty
	return valuation{
		UnitCost:   types.RoundMoney(standardCost),
		TotalValue: total,
		Quantity:   newQty,
		Value:      newQty.Decimal().Mul(standardCost),
		Rate:       standardCost,
	}
}

// valueOutwardFIFO records the cost derived by the layer consumer; the
// movement's unit cost is the average across consumed layers.
func valueOutwardFIFO(bal *entity.StockBalance, qty types.Quantity, layerCost types.Money) valuation {
	total := types.RoundMoney(layerCost)
	newQty := bal.Available - qty
	newValue := bal.TotalValue.Sub(total)

	rate := types.Zero()
	if !newQty.IsZero() {
		rate = newValue.Div(newQty.Decimal())
	}

	return valuation{
		UnitCost:   types.RoundMoney(layerCost.Div(qty.Decimal())),
		TotalValue: total,
		Quantity:   newQty,
		Value:      newValue,
		Rate:       rate,
	}
}
