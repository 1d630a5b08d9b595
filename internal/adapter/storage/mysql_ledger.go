package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopledger/pos/internal/core/domain"
)

type MySQLLedger struct {
	db *sql.DB
}

func NewMySQLLedger(db *sql.DB) *MySQLLedger {
	return &MySQLLedger{db: db}
}

// Append writes the sale header and its line snapshots in one transaction.
// The unique key on (tenant_id, bill_id) rejects a bill-id collision.
func (m *MySQLLedger) Append(ctx context.Context, record *domain.SaleRecord) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (bill_id, tenant_id, customer_name, total, ts)
		VALUES (?, ?, ?, ?, ?)`,
		record.BillID, record.TenantID, record.CustomerName, record.Total, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, line := range record.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines (bill_id, tenant_id, position, name, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			record.BillID, record.TenantID, i, line.Name, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLLedger) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.SaleRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT bill_id, customer_name, total, ts
		FROM sales WHERE tenant_id = ?
		ORDER BY ts DESC, bill_id LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var records []domain.SaleRecord
	for rows.Next() {
		rec := domain.SaleRecord{TenantID: tenantID}
		if err := rows.Scan(&rec.BillID, &rec.CustomerName, &rec.Total, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	if err := m.attachLines(ctx, tenantID, records); err != nil {
		return nil, err
	}
	return records, nil
}

// attachLines fetches the line snapshots for every record in one query and
// buckets them by bill id, preserving per-bill position order.
func (m *MySQLLedger) attachLines(ctx context.Context, tenantID string, records []domain.SaleRecord) error {
	byBill := make(map[string]*domain.SaleRecord, len(records))
	args := make([]any, 0, len(records)+1)
	args = append(args, tenantID)
	placeholders := ""
	for i := range records {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, records[i].BillID)
		byBill[records[i].BillID] = &records[i]
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT bill_id, name, quantity, unit_price
		FROM sale_lines WHERE tenant_id = ? AND bill_id IN (`+placeholders+`)
		ORDER BY bill_id, position`, args...)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID string
		var line domain.SaleLine
		if err := rows.Scan(&billID, &line.Name, &line.Quantity, &line.UnitPrice); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		if rec, ok := byBill[billID]; ok {
			rec.Lines = append(rec.Lines, line)
		}
	}
	return rows.Err()
}
