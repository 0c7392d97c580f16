// Package main provides CLI for ledger reconciliation.
// Usage: reconcile run --tenant <uuid> --warehouse <uuid> --sku-kind item --sku-id <uuid>
//        reconcile check --tenant <uuid> --warehouse <uuid> --sku-kind product --sku-id <uuid>
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockledger"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), logger.Default())

	switch os.Args[1] {
	case "run":
		runReconcile(ctx, true)
	case "check":
		runReconcile(ctx, false)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Stock Ledger Reconciliation CLI

Usage:
  reconcile <command> [options]

Commands:
  run       Replay the ledger for a key and rewrite the balance cache
  check     Replay the ledger and report the derived totals without writing
  help      Show this help

Options:
  --tenant     Tenant UUID (required)
  --warehouse  Warehouse UUID (required)
  --sku-kind   SKU kind: item or product (required)
  --sku-id     SKU UUID (required)

Environment Variables:
  DATABASE_URL    PostgreSQL connection string (required)

Examples:
  reconcile run --tenant 0198... --warehouse 0198... --sku-kind item --sku-id 0198...
  reconcile check --tenant 0198... --warehouse 0198... --sku-kind product --sku-id 0198...`)
}

func runReconcile(ctx context.Context, write bool) {
	key, err := parseKey(os.Args[2:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("Error: DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	eng, err := stockledger.New(ctx, stockledger.Config{DatabaseURL: dsn})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	if !write {
		checkKey(ctx, eng.Queries, key)
		return
	}

	quantity, value, err := eng.Reconciler.RecalculateBalance(ctx, key)
	if err != nil {
		fmt.Printf("Error reconciling %s: %v\n", key, err)
		os.Exit(1)
	}

	fmt.Printf("Reconciled %s\n", key)
	fmt.Printf("  quantity: %s\n", quantity)
	fmt.Printf("  value:    %s\n", value)
}

// checkKey derives the ledger total read-only and compares it against the
// cache without writing anything.
func checkKey(ctx context.Context, queries *ledger.Queries, key ledger.Key) {
	derived, err := queries.GetBalanceAsOf(ctx, key, time.Now())
	if err != nil {
		fmt.Printf("Error reading ledger for %s: %v\n", key, err)
		os.Exit(1)
	}

	balance, err := queries.GetBalance(ctx, key)
	if err != nil {
		fmt.Printf("Error reading balance for %s: %v\n", key, err)
		os.Exit(1)
	}

	var cached entity.StockBalance
	if balance != nil {
		cached = *balance
	}

	fmt.Printf("Key %s\n", key)
	fmt.Printf("  derived quantity: %s\n", derived)
	fmt.Printf("  cached quantity:  %s\n", cached.Available)
	if derived != cached.Available {
		fmt.Println("  MISMATCH: run 'reconcile run' to rewrite the cache")
		os.Exit(2)
	}
	fmt.Println("  OK")
}

func parseKey(args []string) (ledger.Key, error) {
	var tenant, warehouse, skuKind, skuID string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--tenant":
			if i+1 < len(args) {
				tenant = args[i+1]
				i++
			}
		case "--warehouse":
			if i+1 < len(args) {
				warehouse = args[i+1]
				i++
			}
		case "--sku-kind":
			if i+1 < len(args) {
				skuKind = args[i+1]
				i++
			}
		case "--sku-id":
			if i+1 < len(args) {
				skuID = args[i+1]
				i++
			}
		}
	}

	if tenant == "" || warehouse == "" || skuKind == "" || skuID == "" {
		return ledger.Key{}, fmt.Errorf("--tenant, --warehouse, --sku-kind and --sku-id are required")
	}

	tenantID, err := id.Parse(tenant)
	if err != nil {
		return ledger.Key{}, fmt.Errorf("invalid tenant id: %w", err)
	}
	warehouseID, err := id.Parse(warehouse)
	if err != nil {
		return ledger.Key{}, fmt.Errorf("invalid warehouse id: %w", err)
	}
	sid, err := id.Parse(skuID)
	if err != nil {
		return ledger.Key{}, fmt.Errorf("invalid sku id: %w", err)
	}

	var ref entity.SkuRef
	switch skuKind {
	case "item":
		ref = entity.ItemRef(sid)
	case "product":
		ref = entity.ProductRef(sid)
	default:
		return ledger.Key{}, fmt.Errorf("sku-kind must be item or product, got %q", skuKind)
	}

	key := ledger.Key{TenantID: tenantID, WarehouseID: warehouseID, Sku: ref}
	if err := key.Validate(); err != nil {
		return ledger.Key{}, err
	}

	return key, nil
}
