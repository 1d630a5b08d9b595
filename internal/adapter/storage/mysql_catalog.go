package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

const stockItemColumns = "id, tenant_id, name, sku, quantity, unit_price, status, created_at, updated_at"

type MySQLCatalog struct {
	db *sql.DB
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (m *MySQLCatalog) Find(ctx context.Context, tenantID, itemID string) (*domain.StockItem, error) {
	var it domain.StockItem
	err := m.db.QueryRowContext(ctx, `
		SELECT `+stockItemColumns+`
		FROM stock_items WHERE tenant_id = ? AND id = ?`, tenantID, itemID,
	).Scan(&it.ID, &it.TenantID, &it.Name, &it.SKU, &it.Quantity, &it.UnitPrice, &it.Status, &it.CreatedAt, &it.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query stock item: %w", err)
	}
	return &it, nil
}

// DecrementStock is a single conditional statement: MySQL evaluates SET
// assignments left to right, so the status assignment already sees the
// decremented quantity. There is deliberately no stock >= ? guard; oversell
// goes negative.
func (m *MySQLCatalog) DecrementStock(ctx context.Context, tenantID, itemID string, quantity int) (*domain.StockItem, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE stock_items
		SET quantity = quantity - ?,
		    status = IF(quantity < ?, 'LOW_STOCK', 'NOMINAL'),
		    updated_at = NOW()
		WHERE tenant_id = ? AND id = ?`,
		quantity, domain.LowStockThreshold, tenantID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, port.ErrItemNotFound
	}

	return m.Find(ctx, tenantID, itemID)
}

func (m *MySQLCatalog) Create(ctx context.Context, item *domain.StockItem) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock_items (`+stockItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TenantID, item.Name, item.SKU, item.Quantity,
		item.UnitPrice, item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

func (m *MySQLCatalog) Update(ctx context.Context, item *domain.StockItem) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE stock_items
		SET name = ?, sku = ?, quantity = ?, unit_price = ?, status = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		item.Name, item.SKU, item.Quantity, item.UnitPrice, item.Status, item.UpdatedAt,
		item.TenantID, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}

	// The driver reports changed rows, not matched rows, so an identical
	// resubmit within the same DATETIME second also lands on 0. Only a
	// missing row is not-found.
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var one int
		err := m.db.QueryRowContext(ctx, `
			SELECT 1 FROM stock_items WHERE tenant_id = ? AND id = ?`,
			item.TenantID, item.ID,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return port.ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("update stock item: %w", err)
		}
	}
	return nil
}

func (m *MySQLCatalog) Delete(ctx context.Context, tenantID, itemID string) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM stock_items WHERE tenant_id = ? AND id = ?`, tenantID, itemID)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrItemNotFound
	}
	return nil
}

func (m *MySQLCatalog) List(ctx context.Context, tenantID string) ([]domain.StockItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+stockItemColumns+`
		FROM stock_items WHERE tenant_id = ? ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var items []domain.StockItem
	for rows.Next() {
		var it domain.StockItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.Name, &it.SKU, &it.Quantity, &it.UnitPrice, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
