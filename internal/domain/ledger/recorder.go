package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/sku"
	"stockledger/pkg/logger"
)

// MovementInput describes one inventory-affecting business event.
type MovementInput struct {
	TenantID    id.ID
	BranchID    id.ID
	WarehouseID id.ID
	Sku         entity.SkuRef

	TxnType   entity.TxnType
	TxnDate   time.Time
	Reference entity.Reference

	// Direction may be left empty for transaction types that imply one;
	// adjustments must set it explicitly.
	Direction entity.Direction
	Quantity  types.Quantity
	UOM       string

	// UnitCost is optional for inward movements; outward cost is always
	// derived from the costing policy.
	UnitCost *types.Money

	Batch     *string
	Narration *string
	CreatedBy string
}

// Key returns the balance-cache key the movement targets.
func (in *MovementInput) Key() Key {
	return Key{TenantID: in.TenantID, WarehouseID: in.WarehouseID, Sku: in.Sku}
}

// Validate checks input invariants and normalizes the direction.
func (in *MovementInput) Validate() error {
	if err := in.Key().Validate(); err != nil {
		return err
	}
	if !in.TxnType.IsValid() {
		return apperror.NewValidation("unknown transaction type").
			WithDetail("field", "txnType").
			WithDetail("value", string(in.TxnType))
	}
	if in.TxnDate.IsZero() {
		return apperror.NewValidation("transaction date is required").
			WithDetail("field", "txnDate")
	}
	if !in.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", in.Quantity.String())
	}
	if in.Reference.Type == "" {
		return apperror.NewValidation("reference type is required").
			WithDetail("field", "reference.type")
	}

	implied, ok := in.TxnType.ImpliedDirection()
	switch {
	case ok && in.Direction == "":
		in.Direction = implied
	case ok && in.Direction != implied:
		return apperror.NewValidation("direction conflicts with transaction type").
			WithDetail("txnType", string(in.TxnType)).
			WithDetail("direction", string(in.Direction))
	case !ok && !in.Direction.IsValid():
		return apperror.NewValidation("adjustment requires an explicit direction").
			WithDetail("field", "direction")
	}

	return nil
}

// Recorder is the engine's primary entry point: it translates one business
// event into an immutable ledger entry and a consistent balance row, as one
// atomic unit.
//
// When the caller is already inside a transaction (tx.Manager nests through
// context), the movement joins it; otherwise the Recorder opens its own.
// The Recorder never retries: retry policy belongs to the caller, because a
// retried FIFO consumption may legitimately select different layers.
type Recorder struct {
	entries   EntryRepository
	balances  BalanceRepository
	skus      sku.Reader
	txManager tx.Manager
	fifo      fifoConsumer
}

// NewRecorder creates a movement recorder.
func NewRecorder(entries EntryRepository, balances BalanceRepository, skus sku.Reader, txManager tx.Manager) *Recorder {
	return &Recorder{
		entries:   entries,
		balances:  balances,
		skus:      skus,
		txManager: txManager,
		fifo:      fifoConsumer{entries: entries},
	}
}

// RecordMovement validates, costs, appends the ledger entry, and updates
// the balance cache. Any failure rolls the whole movement back.
func (r *Recorder) RecordMovement(ctx context.Context, input MovementInput) (*entity.LedgerEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	costing, err := r.skus.GetCosting(ctx, input.TenantID, input.Sku)
	if err != nil {
		return nil, err
	}
	if costing.Policy == "" {
		costing.Policy = sku.DefaultPolicy
	}

	var entry *entity.LedgerEntry
	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err = r.recordLocked(ctx, input, costing)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement recorded",
		"entry_id", entry.ID,
		"txn_type", entry.TxnType,
		"sku", entry.Sku().String(),
		"warehouse_id", entry.WarehouseID,
		"quantity", input.Quantity,
		"balance_quantity", entry.BalanceQuantity,
	)

	return entry, nil
}

// recordLocked performs steps 3–7 of the movement algorithm inside the
// ambient transaction.
func (r *Recorder) recordLocked(ctx context.Context, input MovementInput, costing sku.Costing) (*entity.LedgerEntry, error) {
	bal, err := r.balances.GetForUpdate(ctx, input.Key())
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}

	var v valuation
	switch input.Direction {
	case entity.DirectionIn:
		v = valueInward(bal, input.Quantity, input.UnitCost, costing)

	case entity.DirectionOut:
		if input.Quantity > bal.Available {
			return nil, apperror.NewInsufficientStock(
				input.Sku.String(),
				input.Quantity.Float64(),
				bal.Available.Float64(),
			)
		}
		switch costing.Policy {
		case sku.PolicyFIFO:
			layerCost, _, err := r.fifo.consume(ctx, input.Key(), input.Quantity)
			if err != nil {
				return nil, err
			}
			v = valueOutwardFIFO(bal, input.Quantity, layerCost)
		case sku.PolicyStandard:
			v = valueOutwardStandard(bal, input.Quantity, costing.StandardCost)
		default:
			v = valueOutwardAverage(bal, input.Quantity)
		}
	}

	entry := buildEntry(input, v)
	if err := r.entries.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	applyToBalance(bal, entry, v)
	if err := r.balances.Save(ctx, bal); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	return entry, nil
}

func buildEntry(input MovementInput, v valuation) *entity.LedgerEntry {
	entry := &entity.LedgerEntry{
		ID:              id.New(),
		TenantID:        input.TenantID,
		BranchID:        input.BranchID,
		WarehouseID:     input.WarehouseID,
		SkuKind:         input.Sku.Kind,
		SkuID:           input.Sku.ID,
		TxnType:         input.TxnType,
		TxnDate:         input.TxnDate,
		RefType:         input.Reference.Type,
		RefID:           input.Reference.ID,
		RefNumber:       input.Reference.Number,
		UOM:             input.UOM,
		UnitCost:        v.UnitCost,
		TotalValue:      v.TotalValue,
		BalanceQuantity: v.Quantity,
		BalanceValue:    types.RoundMoney(v.Value),
		Batch:           input.Batch,
		Narration:       input.Narration,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       time.Now().UTC(),
	}
	if input.Direction == entity.DirectionOut {
		entry.QuantityOut = input.Quantity
	} else {
		entry.QuantityIn = input.Quantity
	}
	if entry.BalanceQuantity.IsZero() {
		entry.BalanceValue = types.Zero()
	}
	return entry
}

func applyToBalance(bal *entity.StockBalance, entry *entity.LedgerEntry, v valuation) {
	bal.SetValuation(v.Quantity, v.Value, v.Rate)

	txnDate := entry.TxnDate
	bal.LastMovementAt = &txnDate
	switch entry.TxnType {
	case entity.TxnReceipt:
		bal.LastPurchaseAt = &txnDate
		bal.LastPurchaseRate = entry.UnitCost
	case entity.TxnDispatch:
		bal.LastSaleAt = &txnDate
	}
	bal.UpdatedAt = time.Now().UTC()
}

// TransferInput describes a two-leg warehouse transfer.
type TransferInput struct {
	TenantID        id.ID
	BranchID        id.ID
	FromWarehouseID id.ID
	ToWarehouseID   id.ID
	Sku             entity.SkuRef

	TxnDate   time.Time
	Reference entity.Reference
	Quantity  types.Quantity
	UOM       string

	Batch     *string
	Narration *string
	CreatedBy string
}

// RecordTransfer records the transfer_out and transfer_in legs in one
// transaction: either both commit or neither does. The inward leg carries
// the cost the outward leg removed, so value moves between warehouses
// without distortion.
func (r *Recorder) RecordTransfer(ctx context.Context, input TransferInput) (outLeg, inLeg *entity.LedgerEntry, err error) {
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, nil, apperror.NewValidation("transfer requires two distinct warehouses").
			WithDetail("warehouseId", input.FromWarehouseID)
	}

	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		outLeg, err = r.RecordMovement(ctx, MovementInput{
			TenantID:    input.TenantID,
			BranchID:    input.BranchID,
			WarehouseID: input.FromWarehouseID,
			Sku:         input.Sku,
			TxnType:     entity.TxnTransferOut,
			TxnDate:     input.TxnDate,
			Reference:   input.Reference,
			Quantity:    input.Quantity,
			UOM:         input.UOM,
			Batch:       input.Batch,
			Narration:   input.Narration,
			CreatedBy:   input.CreatedBy,
		})
		if err != nil {
			return err
		}

		unitCost := outLeg.UnitCost
		inLeg, err = r.RecordMovement(ctx, MovementInput{
			TenantID:    input.TenantID,
			BranchID:    input.BranchID,
			WarehouseID: input.ToWarehouseID,
			Sku:         input.Sku,
			TxnType:     entity.TxnTransferIn,
			TxnDate:     input.TxnDate,
			Reference:   input.Reference,
			Quantity:    input.Quantity,
			UOM:         input.UOM,
			UnitCost:    &unitCost,
			Batch:       input.Batch,
			Narration:   input.Narration,
			CreatedBy:   input.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return outLeg, inLeg, nil
}

// AdjustReserved changes the reserved bucket by delta.
// Reserved may not drop below zero nor exceed available.
func (r *Recorder) AdjustReserved(ctx context.Context, key Key, delta types.Quantity) error {
	return r.adjustBucket(ctx, key, func(bal *entity.StockBalance) error {
		newReserved := bal.Reserved + delta
		if newReserved.IsNegative() {
			return apperror.NewValidation("reserved quantity cannot go negative").
				WithDetail("reserved", bal.Reserved.String()).
				WithDetail("delta", delta.String())
		}
		if newReserved > bal.Available {
			return apperror.NewInsufficientStock(
				key.Sku.String(),
				newReserved.Float64(),
				bal.Available.Float64(),
			)
		}
		bal.Reserved = newReserved
		bal.RecalcFree()
		return nil
	})
}

// AdjustOnOrder changes the on-order bucket by delta.
func (r *Recorder) AdjustOnOrder(ctx context.Context, key Key, delta types.Quantity) error {
	return r.adjustBucket(ctx, key, func(bal *entity.StockBalance) error {
		newOnOrder := bal.OnOrder + delta
		if newOnOrder.IsNegative() {
			return apperror.NewValidation("on-order quantity cannot go negative").
				WithDetail("onOrder", bal.OnOrder.String()).
				WithDetail("delta", delta.String())
		}
		bal.OnOrder = newOnOrder
		return nil
	})
}

// AdjustInProduction changes the in-production bucket by delta.
func (r *Recorder) AdjustInProduction(ctx context.Context, key Key, delta types.Quantity) error {
	return r.adjustBucket(ctx, key, func(bal *entity.StockBalance) error {
		newInProduction := bal.InProduction + delta
		if newInProduction.IsNegative() {
			return apperror.NewValidation("in-production quantity cannot go negative").
				WithDetail("inProduction", bal.InProduction.String()).
				WithDetail("delta", delta.String())
		}
		bal.InProduction = newInProduction
		return nil
	})
}

// adjustBucket applies the same lock-then-mutate discipline as movements.
func (r *Recorder) adjustBucket(ctx context.Context, key Key, mutate func(*entity.StockBalance) error) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bal, err := r.balances.GetForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if err := mutate(bal); err != nil {
			return err
		}
		bal.UpdatedAt = time.Now().UTC()
		return r.balances.Save(ctx, bal)
	})
}
