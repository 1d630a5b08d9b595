package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

// InventoryService owns the tenant-scoped catalog CRUD used by the
// inventory screens. Every quantity mutation recomputes the low-stock
// status and drops the tenant's cached low-stock count.
type InventoryService struct {
	catalog port.CatalogRepository
	cache   port.CacheRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewInventoryService(catalog port.CatalogRepository, cache port.CacheRepository, logger zerolog.Logger) *InventoryService {
	return &InventoryService{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// ItemInput carries the editable attributes of a stock item. SKU is only
// honored on create; blank means auto-generate.
type ItemInput struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidItem)
	}
	if in.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidItem)
	}
	return nil
}

func (s *InventoryService) CreateItem(ctx context.Context, tenantID string, input ItemInput) (*domain.StockItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = domain.NewSKU()
	}

	now := s.now()
	item := &domain.StockItem{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(input.Name),
		SKU:       sku,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Status:    domain.StatusForQuantity(input.Quantity),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.catalog.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.invalidateLowStock(ctx, tenantID)
	return item, nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, tenantID, itemID string, input ItemInput) (*domain.StockItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	item, err := s.catalog.Find(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Quantity = input.Quantity
	item.UnitPrice = input.UnitPrice
	item.Status = domain.StatusForQuantity(input.Quantity)
	item.UpdatedAt = s.now()

	if err := s.catalog.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.invalidateLowStock(ctx, tenantID)
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, tenantID, itemID string) error {
	if err := s.catalog.Delete(ctx, tenantID, itemID); err != nil {
		return err
	}
	s.invalidateLowStock(ctx, tenantID)
	return nil
}

func (s *InventoryService) ListItems(ctx context.Context, tenantID string) ([]domain.StockItem, error) {
	return s.catalog.List(ctx, tenantID)
}

// LowStockCount is cache-aside: serve the cached count when present,
// otherwise count from the catalog and repopulate.
func (s *InventoryService) LowStockCount(ctx context.Context, tenantID string) (int, error) {
	if s.cache != nil {
		count, ok, err := s.cache.GetLowStockCount(ctx, tenantID)
		if err != nil {
			s.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("low stock cache read failed")
		} else if ok {
			return count, nil
		}
	}

	items, err := s.catalog.List(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	count := 0
	for _, it := range items {
		if it.Status == domain.StatusLowStock {
			count++
		}
	}

	if s.cache != nil {
		if err := s.cache.SetLowStockCount(ctx, tenantID, count); err != nil {
			s.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("low stock cache write failed")
		}
	}
	return count, nil
}

func (s *InventoryService) invalidateLowStock(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLowStockCount(ctx, tenantID); err != nil {
		s.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("low stock cache invalidation failed")
	}
}
