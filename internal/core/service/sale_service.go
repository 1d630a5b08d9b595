package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

const (
	defaultSalesLimit = 50
	maxSalesLimit     = 200
)

// SaleService is the commit orchestrator: it plans a cart against the
// catalog, applies the per-line decrements, and appends the resulting
// record to the ledger. Stock mutation and ledger append are two separate
// operations with no rollback coupling.
type SaleService struct {
	engine  *ReservationEngine
	catalog port.CatalogRepository
	ledger  port.LedgerRepository
	cache   port.CacheRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSaleService(catalog port.CatalogRepository, ledger port.LedgerRepository, cache port.CacheRepository, logger zerolog.Logger) *SaleService {
	return &SaleService{
		engine:  NewReservationEngine(catalog),
		catalog: catalog,
		ledger:  ledger,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Commit applies the cart as one logical unit of work for tenantID and
// returns the immutable sale record. Plan errors propagate before any
// write. Per-line decrements are independent: lines already applied stay
// applied when a sibling line or the ledger append fails.
func (s *SaleService) Commit(ctx context.Context, tenantID string, cart domain.Cart, customerName string) (*domain.SaleRecord, error) {
	billID := domain.NewBillID(s.now())

	plan, err := s.engine.Plan(ctx, tenantID, cart)
	if err != nil {
		return nil, err
	}

	// Fan out one atomic decrement per line. Each update is conditional on
	// tenant ownership inside the store; there is no cross-line transaction.
	results := make([]LineResult, len(plan.Lines))
	var wg sync.WaitGroup
	for i, line := range plan.Lines {
		wg.Add(1)
		go func(i int, line PlanLine) {
			defer wg.Done()
			_, err := s.catalog.DecrementStock(ctx, tenantID, line.ItemID, line.Quantity)
			results[i] = LineResult{ItemID: line.ItemID, Applied: err == nil, Err: err}
		}(i, line)
	}
	wg.Wait()

	applied := 0
	failed := 0
	for _, r := range results {
		if r.Applied {
			applied++
			continue
		}
		failed++
		s.logger.Error().
			Str("tenant_id", tenantID).
			Str("bill_id", billID).
			Str("item_id", r.ItemID).
			Err(r.Err).
			Msg("stock decrement failed")
	}
	if applied > 0 {
		s.invalidateLowStock(ctx, tenantID)
	}
	if failed > 0 {
		return nil, &PartialCommitError{BillID: billID, Lines: results}
	}

	name := strings.TrimSpace(customerName)
	if name == "" {
		name = domain.WalkInCustomer
	}

	saleLines := make([]domain.SaleLine, 0, len(plan.Lines))
	for _, l := range plan.Lines {
		saleLines = append(saleLines, domain.SaleLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	record := &domain.SaleRecord{
		BillID:       billID,
		TenantID:     tenantID,
		CustomerName: name,
		Lines:        saleLines,
		Total:        plan.Total(),
		Timestamp:    s.now(),
	}

	if err := s.ledger.Append(ctx, record); err != nil {
		// Stock is already decremented and stays that way. Logged under a
		// dedicated event so operators can find drift to reconcile.
		s.logger.Error().
			Str("event", "ledger_write_failure").
			Str("tenant_id", tenantID).
			Str("bill_id", billID).
			Str("total", record.Total.String()).
			Err(err).
			Msg("sale record append failed after stock decrement, manual reconciliation required")
		return nil, &LedgerWriteError{BillID: billID, Err: err}
	}

	return record, nil
}

// ListSales returns the tenant's most recent sales, newest first. The
// limit is clamped to maxSalesLimit.
func (s *SaleService) ListSales(ctx context.Context, tenantID string, limit int) ([]domain.SaleRecord, error) {
	if limit <= 0 {
		limit = defaultSalesLimit
	}
	if limit > maxSalesLimit {
		limit = maxSalesLimit
	}
	return s.ledger.ListByTenant(ctx, tenantID, limit)
}

func (s *SaleService) invalidateLowStock(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLowStockCount(ctx, tenantID); err != nil {
		s.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("low stock cache invalidation failed")
	}
}
