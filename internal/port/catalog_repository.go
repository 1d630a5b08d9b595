package port

import (
	"context"

	"github.com/shopledger/pos/internal/core/domain"
)

type CatalogRepository interface {
	// Find returns the item owned by tenantID, or ErrItemNotFound.
	Find(ctx context.Context, tenantID, itemID string) (*domain.StockItem, error)

	// DecrementStock atomically decreases the item's quantity and recomputes
	// its low-stock status in a single conditional update scoped to tenantID,
	// then returns the updated row. Quantity may go negative.
	DecrementStock(ctx context.Context, tenantID, itemID string, quantity int) (*domain.StockItem, error)

	Create(ctx context.Context, item *domain.StockItem) error

	// Update replaces the item's mutable attributes. The caller is expected
	// to have recomputed Status for the new quantity.
	Update(ctx context.Context, item *domain.StockItem) error

	Delete(ctx context.Context, tenantID, itemID string) error

	List(ctx context.Context, tenantID string) ([]domain.StockItem, error)
}
