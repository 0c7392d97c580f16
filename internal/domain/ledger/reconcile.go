package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/pkg/logger"
)

// Reconciler rebuilds a balance row from the full ledger of its key.
// Repair/audit tool: it never runs on the normal write path.
type Reconciler struct {
	entries   EntryRepository
	balances  BalanceRepository
	txManager tx.Manager
}

// NewReconciler creates a reconciliation engine.
func NewReconciler(entries EntryRepository, balances BalanceRepository, txManager tx.Manager) *Reconciler {
	return &Reconciler{entries: entries, balances: balances, txManager: txManager}
}

// RecalculateBalance replays every ledger entry for the key in
// chronological order, maintaining running quantity and value as
// weighted-average costing would: inward adds value at the recorded unit
// cost, outward removes value at the running rate. Each entry's snapshot
// fields and the balance row are rewritten to match.
//
// Idempotent: with no new entries, a repeat run produces identical results
// and rewrites nothing.
func (r *Reconciler) RecalculateBalance(ctx context.Context, key Key) (types.Quantity, types.Money, error) {
	if err := key.Validate(); err != nil {
		return 0, types.Zero(), err
	}

	var (
		finalQty   types.Quantity
		finalValue types.Money
		rewritten  int
	)

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bal, err := r.balances.GetForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		history, err := r.entries.ListForKey(ctx, key)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}

		var (
			runQty   types.Quantity
			runValue = types.Zero()
			lastDate *time.Time
		)

		for i := range history {
			e := &history[i]

			if e.QuantityIn.IsPositive() {
				runValue = runValue.Add(types.RoundMoney(e.QuantityIn.Decimal().Mul(e.UnitCost)))
				runQty += e.QuantityIn
			} else {
				rate := types.Zero()
				if runQty.IsPositive() {
					rate = runValue.Div(runQty.Decimal())
				}
				runValue = runValue.Sub(types.RoundMoney(e.QuantityOut.Decimal().Mul(rate)))
				runQty -= e.QuantityOut
			}
			if runQty.IsZero() || runValue.IsNegative() {
				runValue = types.Zero()
			}

			snapValue := types.RoundMoney(runValue)
			if e.BalanceQuantity != runQty || !e.BalanceValue.Equal(snapValue) {
				if err := r.entries.UpdateSnapshot(ctx, e.ID, runQty, snapValue); err != nil {
					return fmt.Errorf("rewrite snapshot %s: %w", e.ID, err)
				}
				rewritten++
			}

			d := e.TxnDate
			lastDate = &d
		}

		rate := types.Zero()
		if runQty.IsPositive() {
			rate = runValue.Div(runQty.Decimal())
		}
		bal.SetValuation(runQty, runValue, rate)
		bal.LastMovementAt = lastDate
		bal.UpdatedAt = time.Now().UTC()
		if err := r.balances.Save(ctx, bal); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}

		finalQty = runQty
		finalValue = types.RoundMoney(runValue)
		return nil
	})
	if err != nil {
		return 0, types.Zero(), err
	}

	logger.Info(ctx, "balance recalculated",
		"key", key.String(),
		"quantity", finalQty,
		"value", finalValue,
		"snapshots_rewritten", rewritten,
	)

	return finalQty, finalValue, nil
}
