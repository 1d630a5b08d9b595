package port

import (
	"context"

	"github.com/shopledger/pos/internal/core/domain"
)

type LedgerRepository interface {
	// Append durably stores a completed sale. Records are immutable once
	// written and are never deleted here.
	Append(ctx context.Context, record *domain.SaleRecord) error

	// ListByTenant returns the tenant's sales, newest first, at most limit rows.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.SaleRecord, error)
}
