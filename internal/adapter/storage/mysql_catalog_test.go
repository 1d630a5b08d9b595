package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("POS_MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/pos?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := RunMigrations(db, migrationsDir()); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return db
}

func migrationsDir() string {
	if dir := os.Getenv("POS_MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "../../../migrations"
}

func seedMySQLItem(t *testing.T, db *sql.DB, tenantID, id string, quantity int, price string) {
	t.Helper()
	ctx := context.Background()

	db.ExecContext(ctx, `DELETE FROM stock_items WHERE tenant_id = ? AND id = ?`, tenantID, id)
	_, err := db.ExecContext(ctx, `
		INSERT INTO stock_items (id, tenant_id, name, sku, quantity, unit_price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		id, tenantID, "Item "+id, fmt.Sprintf("SKU-%s-%d", id, time.Now().UnixNano()), quantity,
		price, domain.StatusForQuantity(quantity),
	)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
}

func TestMySQLCatalog_DecrementStock(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	catalog := NewMySQLCatalog(db)
	seedMySQLItem(t, db, "test-tenant", "test-item", 10, "2.50")

	item, err := catalog.DecrementStock(ctx, "test-tenant", "test-item", 3)
	if err != nil {
		t.Fatalf("DecrementStock failed: %v", err)
	}
	if item.Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", item.Quantity)
	}
	if item.Status != domain.StatusNominal {
		t.Errorf("expected NOMINAL, got %s", item.Status)
	}
}

func TestMySQLCatalog_DecrementTripsLowStock(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	catalog := NewMySQLCatalog(db)
	seedMySQLItem(t, db, "test-tenant", "test-item-low", 6, "1.00")

	item, err := catalog.DecrementStock(ctx, "test-tenant", "test-item-low", 2)
	if err != nil {
		t.Fatalf("DecrementStock failed: %v", err)
	}
	if item.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", item.Quantity)
	}
	if item.Status != domain.StatusLowStock {
		t.Errorf("expected LOW_STOCK, got %s", item.Status)
	}
}

func TestMySQLCatalog_DecrementForeignTenant(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	catalog := NewMySQLCatalog(db)
	seedMySQLItem(t, db, "tenant-owner", "test-item-iso", 10, "1.00")

	_, err := catalog.DecrementStock(ctx, "tenant-other", "test-item-iso", 1)
	if !errors.Is(err, port.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	// owner's row untouched
	item, err := catalog.Find(ctx, "tenant-owner", "test-item-iso")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if item.Quantity != 10 {
		t.Errorf("expected quantity 10, got %d", item.Quantity)
	}
}

func TestMySQLCatalog_UpdateIdenticalResubmit(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	catalog := NewMySQLCatalog(db)
	seedMySQLItem(t, db, "test-tenant", "test-item-noop", 10, "2.50")

	item, err := catalog.Find(ctx, "test-tenant", "test-item-noop")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	// same values back to back within one second: no column changes, so the
	// server reports zero changed rows; the row still exists and the update
	// must not surface as not-found
	if err := catalog.Update(ctx, item); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	if err := catalog.Update(ctx, item); err != nil {
		t.Errorf("identical resubmit failed: %v", err)
	}

	item.ID = "test-item-noop-ghost"
	if err := catalog.Update(ctx, item); !errors.Is(err, port.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for missing row, got %v", err)
	}
}

func TestMySQLCatalog_CRUD(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	catalog := NewMySQLCatalog(db)

	db.ExecContext(ctx, `DELETE FROM stock_items WHERE tenant_id = 'test-crud'`)

	now := time.Now().Truncate(time.Second)
	item := &domain.StockItem{
		ID:        fmt.Sprintf("crud-%d", now.UnixNano()),
		TenantID:  "test-crud",
		Name:      "Rice 1kg",
		SKU:       domain.NewSKU(),
		Quantity:  10,
		UnitPrice: decimal.RequireFromString("2.50"),
		Status:    domain.StatusNominal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := catalog.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := catalog.Find(ctx, "test-crud", item.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !got.UnitPrice.Equal(item.UnitPrice) {
		t.Errorf("expected price %s, got %s", item.UnitPrice, got.UnitPrice)
	}

	got.Name = "Rice 5kg"
	got.Quantity = 3
	got.Status = domain.StatusForQuantity(got.Quantity)
	got.UpdatedAt = time.Now().Truncate(time.Second)
	if err := catalog.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := catalog.Find(ctx, "test-crud", item.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if updated.Status != domain.StatusLowStock {
		t.Errorf("expected LOW_STOCK after edit, got %s", updated.Status)
	}

	if err := catalog.Delete(ctx, "test-crud", item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := catalog.Find(ctx, "test-crud", item.ID); !errors.Is(err, port.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound after delete, got %v", err)
	}
}
