// Package stockledger assembles the stock valuation ledger engine: an
// immutable movement ledger plus a materialized balance cache per
// (tenant, warehouse, SKU), maintained under weighted-average, FIFO or
// standard costing.
//
// The engine is a library. Callers embed it and drive it through the
// services exposed on Engine; movements join the caller's transaction when
// one is already open through the transaction manager.
package stockledger

import (
	"context"
	"fmt"

	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/sku"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/internal/infrastructure/storage/postgres/report_repo"
	"stockledger/internal/infrastructure/storage/postgres/sku_repo"
)

// Config holds engine configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// Pool overrides the default connection pool settings when set.
	Pool *postgres.PoolConfig
}

// Engine bundles the engine's services over one connection pool.
type Engine struct {
	// Recorder is the write side: movements, transfers, bucket adjustments.
	Recorder *ledger.Recorder

	// Queries is the read side: balances and paginated history.
	Queries *ledger.Queries

	// Reconciler rebuilds balance rows from the ledger.
	Reconciler *ledger.Reconciler

	// Reports serves threshold, velocity and summary reports.
	Reports *reports.Service

	// Skus resolves costing policy and master data.
	Skus sku.Reader

	// TxManager lets callers open a transaction that spans several engine
	// calls (for example a multi-line document post).
	TxManager *postgres.TxManager

	pool *postgres.Pool
}

// New connects to PostgreSQL and wires the engine.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	if cfg.Pool != nil {
		poolCfg = *cfg.Pool
		if poolCfg.DSN == "" {
			poolCfg.DSN = cfg.DatabaseURL
		}
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	e := NewWithPool(pool)
	e.pool = pool
	return e, nil
}

// NewWithPool wires the engine over an existing pool. The caller keeps
// ownership of the pool; Close is a no-op.
func NewWithPool(pool *postgres.Pool) *Engine {
	txm := postgres.NewTxManager(pool)

	entries := ledger_repo.NewEntryRepo(txm)
	balances := ledger_repo.NewBalanceRepo(txm)
	skus := sku_repo.NewMasterRepo(txm)

	return &Engine{
		Recorder:   ledger.NewRecorder(entries, balances, skus, txm),
		Queries:    ledger.NewQueries(entries, balances),
		Reconciler: ledger.NewReconciler(entries, balances, txm),
		Reports:    reports.NewService(report_repo.NewReportRepo(txm)),
		Skus:       skus,
		TxManager:  txm,
	}
}

// Close releases the pool when the engine owns it.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}
