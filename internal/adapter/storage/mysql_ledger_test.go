package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopledger/pos/internal/core/domain"
)

func TestMySQLLedger_AppendAndList(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	ledger := NewMySQLLedger(db)

	db.ExecContext(ctx, `DELETE FROM sale_lines WHERE tenant_id = 'test-ledger'`)
	db.ExecContext(ctx, `DELETE FROM sales WHERE tenant_id = 'test-ledger'`)

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		record := &domain.SaleRecord{
			BillID:       fmt.Sprintf("INV-2025-TST%02d", i),
			TenantID:     "test-ledger",
			CustomerName: domain.WalkInCustomer,
			Lines: []domain.SaleLine{
				{Name: "Rice 1kg", Quantity: 2, UnitPrice: decimal.RequireFromString("2.50")},
				{Name: "Soap Bar", Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
			},
			Total:     decimal.RequireFromString("6.00"),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := ledger.Append(ctx, record); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := ledger.ListByTenant(ctx, "test-ledger", 2)
	if err != nil {
		t.Fatalf("ListByTenant failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BillID != "INV-2025-TST02" {
		t.Errorf("expected newest record first, got %s", records[0].BillID)
	}
	if len(records[0].Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(records[0].Lines))
	}
	if records[0].Lines[0].Name != "Rice 1kg" {
		t.Errorf("expected line order preserved, got %s", records[0].Lines[0].Name)
	}
	if !records[0].Total.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("expected total 6.00, got %s", records[0].Total)
	}
}

func TestMySQLLedger_DuplicateBillIDRejected(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	ledger := NewMySQLLedger(db)

	db.ExecContext(ctx, `DELETE FROM sale_lines WHERE tenant_id = 'test-ledger-dup'`)
	db.ExecContext(ctx, `DELETE FROM sales WHERE tenant_id = 'test-ledger-dup'`)

	record := &domain.SaleRecord{
		BillID:       "INV-2025-DUP00",
		TenantID:     "test-ledger-dup",
		CustomerName: domain.WalkInCustomer,
		Total:        decimal.Zero,
		Timestamp:    time.Now(),
	}
	if err := ledger.Append(ctx, record); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if err := ledger.Append(ctx, record); err == nil {
		t.Error("expected duplicate bill id to be rejected")
	}
}

func TestMySQLLedger_TenantIsolation(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	ledger := NewMySQLLedger(db)

	db.ExecContext(ctx, `DELETE FROM sale_lines WHERE tenant_id = 'test-ledger-a'`)
	db.ExecContext(ctx, `DELETE FROM sales WHERE tenant_id = 'test-ledger-a'`)

	record := &domain.SaleRecord{
		BillID:       "INV-2025-ISO00",
		TenantID:     "test-ledger-a",
		CustomerName: domain.WalkInCustomer,
		Total:        decimal.Zero,
		Timestamp:    time.Now(),
	}
	if err := ledger.Append(ctx, record); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := ledger.ListByTenant(ctx, "test-ledger-b", 10)
	if err != nil {
		t.Fatalf("ListByTenant failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records for other tenant, got %d", len(records))
	}
}
