package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
)

// MockStore is an in-memory implementation of EntryRepository,
// BalanceRepository and tx.Manager. Use in unit tests to exercise the
// engine without a database.
//
// Transactions serialize on one mutex and snapshot both stores, so a
// failed function restores the exact pre-transaction state — mirroring the
// rollback guarantees of the Postgres implementation.
type MockStore struct {
	mu       sync.Mutex
	entries  []entity.LedgerEntry
	balances map[string]*entity.StockBalance
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{balances: make(map[string]*entity.StockBalance)}
}

type mockTxKey struct{}

// RunInTransaction implements tx.Manager. Nested calls join the ambient
// transaction; the outermost failure rolls everything back.
func (s *MockStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(mockTxKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapEntries := make([]entity.LedgerEntry, len(s.entries))
	copy(snapEntries, s.entries)
	snapBalances := make(map[string]*entity.StockBalance, len(s.balances))
	for k, b := range s.balances {
		clone := *b
		snapBalances[k] = &clone
	}

	err := fn(context.WithValue(ctx, mockTxKey{}, s))
	if err != nil {
		s.entries = snapEntries
		s.balances = snapBalances
	}
	return err
}

// lock acquires the store mutex unless the context already holds the
// transaction (in which case RunInTransaction holds it).
func (s *MockStore) lock(ctx context.Context) func() {
	if ctx.Value(mockTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- EntryRepository ---

func (s *MockStore) Insert(ctx context.Context, entry *entity.LedgerEntry) error {
	defer s.lock(ctx)()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MockStore) ListForKey(ctx context.Context, key Key) ([]entity.LedgerEntry, error) {
	defer s.lock(ctx)()
	var result []entity.LedgerEntry
	for _, e := range s.entries {
		if matchesKey(&e, key) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TxnDate.Before(result[j].TxnDate)
	})
	return result, nil
}

func (s *MockStore) ListInward(ctx context.Context, key Key) ([]entity.LedgerEntry, error) {
	all, err := s.ListForKey(ctx, key)
	if err != nil {
		return nil, err
	}
	var result []entity.LedgerEntry
	for _, e := range all {
		if e.QuantityIn.IsPositive() {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *MockStore) SumOutward(ctx context.Context, key Key) (types.Quantity, error) {
	defer s.lock(ctx)()
	var total types.Quantity
	for _, e := range s.entries {
		if matchesKey(&e, key) {
			total += e.QuantityOut
		}
	}
	return total, nil
}

func (s *MockStore) SumAsOf(ctx context.Context, key Key, date time.Time) (types.Quantity, error) {
	defer s.lock(ctx)()
	var total types.Quantity
	for _, e := range s.entries {
		if matchesKey(&e, key) && !e.TxnDate.After(date) {
			total += e.SignedQuantity()
		}
	}
	return total, nil
}

func (s *MockStore) UpdateSnapshot(ctx context.Context, entryID id.ID, quantity types.Quantity, value types.Money) error {
	defer s.lock(ctx)()
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries[i].BalanceQuantity = quantity
			s.entries[i].BalanceValue = value
			return nil
		}
	}
	return nil
}

func (s *MockStore) List(ctx context.Context, filter EntryFilter) (EntryPage, error) {
	defer s.lock(ctx)()

	var matched []entity.LedgerEntry
	for _, e := range s.entries {
		if matchesFilter(&e, filter) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TxnDate.After(matched[j].TxnDate)
	})

	page := EntryPage{
		TotalCount: int64(len(matched)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset < len(matched) {
		end := filter.Offset + filter.Limit
		if filter.Limit <= 0 || end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[filter.Offset:end]
	}
	return page, nil
}

// --- BalanceRepository ---

func (s *MockStore) Get(ctx context.Context, key Key) (*entity.StockBalance, error) {
	defer s.lock(ctx)()
	bal, ok := s.balances[key.String()]
	if !ok {
		return nil, nil
	}
	clone := *bal
	return &clone, nil
}

func (s *MockStore) GetForUpdate(ctx context.Context, key Key) (*entity.StockBalance, error) {
	defer s.lock(ctx)()
	bal, ok := s.balances[key.String()]
	if !ok {
		bal = entity.NewStockBalance(key.TenantID, key.WarehouseID, key.Sku)
		s.balances[key.String()] = bal
	}
	clone := *bal
	return &clone, nil
}

func (s *MockStore) ListBySku(ctx context.Context, tenantID id.ID, sku entity.SkuRef) ([]entity.StockBalance, error) {
	defer s.lock(ctx)()
	var result []entity.StockBalance
	for _, b := range s.balances {
		if b.TenantID == tenantID && b.SkuKind == sku.Kind && b.SkuID == sku.ID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WarehouseID.String() < result[j].WarehouseID.String()
	})
	return result, nil
}

func (s *MockStore) Save(ctx context.Context, balance *entity.StockBalance) error {
	defer s.lock(ctx)()
	key := Key{TenantID: balance.TenantID, WarehouseID: balance.WarehouseID, Sku: balance.Sku()}
	clone := *balance
	s.balances[key.String()] = &clone
	return nil
}

// EntryCount returns the number of stored entries (test helper).
func (s *MockStore) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func matchesKey(e *entity.LedgerEntry, key Key) bool {
	return e.TenantID == key.TenantID &&
		e.WarehouseID == key.WarehouseID &&
		e.SkuKind == key.Sku.Kind &&
		e.SkuID == key.Sku.ID
}

func matchesFilter(e *entity.LedgerEntry, f EntryFilter) bool {
	if e.TenantID != f.TenantID {
		return false
	}
	if f.BranchID != nil && e.BranchID != *f.BranchID {
		return false
	}
	if f.WarehouseID != nil && e.WarehouseID != *f.WarehouseID {
		return false
	}
	if f.Sku != nil && (e.SkuKind != f.Sku.Kind || e.SkuID != f.Sku.ID) {
		return false
	}
	if len(f.TxnTypes) > 0 {
		found := false
		for _, t := range f.TxnTypes {
			if e.TxnType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.FromDate != nil && e.TxnDate.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && e.TxnDate.After(*f.ToDate) {
		return false
	}
	if f.Batch != nil && (e.Batch == nil || *e.Batch != *f.Batch) {
		return false
	}
	return true
}

// Ensure compile-time interface compliance.
var (
	_ EntryRepository   = (*MockStore)(nil)
	_ BalanceRepository = (*MockStore)(nil)
	_ tx.Manager        = (*MockStore)(nil)
)
