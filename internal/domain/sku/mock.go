package sku

import (
	"context"
	"sync"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// MockReader is a test implementation of Reader.
// Use in unit tests to avoid database dependencies.
type MockReader struct {
	mu      sync.RWMutex
	masters map[string]*Master

	// GetCostingFunc overrides GetCosting when set.
	GetCostingFunc func(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (Costing, error)
}

// NewMockReader creates an empty mock SKU master.
func NewMockReader() *MockReader {
	return &MockReader{masters: make(map[string]*Master)}
}

// Register adds or replaces a master record.
func (m *MockReader) Register(master *Master) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := entity.SkuRef{Kind: master.Kind, ID: master.ID}
	m.masters[masterKey(master.TenantID, ref)] = master
}

// GetCosting implements Reader.
func (m *MockReader) GetCosting(ctx context.Context, tenantID id.ID, ref entity.SkuRef) (Costing, error) {
	if m.GetCostingFunc != nil {
		return m.GetCostingFunc(ctx, tenantID, ref)
	}
	master, err := m.GetByRef(ctx, tenantID, ref)
	if err != nil {
		return Costing{}, err
	}
	return master.Costing(), nil
}

// GetByRef implements Reader.
func (m *MockReader) GetByRef(_ context.Context, tenantID id.ID, ref entity.SkuRef) (*Master, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	master, ok := m.masters[masterKey(tenantID, ref)]
	if !ok {
		return nil, apperror.NewNotFound("sku", ref.String())
	}
	return master, nil
}

func masterKey(tenantID id.ID, ref entity.SkuRef) string {
	return tenantID.String() + "|" + ref.String()
}

// Ensure compile-time interface compliance.
var _ Reader = (*MockReader)(nil)
