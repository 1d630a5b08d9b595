package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

// MemoryCatalog implements port.CatalogRepository with in-memory storage.
// Used in tests and for running the server without MySQL.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[string]map[string]*domain.StockItem // tenantID -> itemID -> item
	seq   int
	order map[string]int // itemID -> insertion order, for stable listings
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		items: make(map[string]map[string]*domain.StockItem),
		order: make(map[string]int),
	}
}

func (m *MemoryCatalog) Find(ctx context.Context, tenantID, itemID string) (*domain.StockItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[tenantID][itemID]
	if !ok {
		return nil, port.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

// DecrementStock holds the write lock across decrement and status recompute,
// giving the same no-lost-update guarantee as the SQL conditional update.
func (m *MemoryCatalog) DecrementStock(ctx context.Context, tenantID, itemID string, quantity int) (*domain.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[tenantID][itemID]
	if !ok {
		return nil, port.ErrItemNotFound
	}
	item.Quantity -= quantity
	item.Status = domain.StatusForQuantity(item.Quantity)

	clone := *item
	return &clone, nil
}

func (m *MemoryCatalog) Create(ctx context.Context, item *domain.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items[item.TenantID] == nil {
		m.items[item.TenantID] = make(map[string]*domain.StockItem)
	}
	clone := *item
	m.items[item.TenantID][item.ID] = &clone
	m.seq++
	m.order[item.ID] = m.seq
	return nil
}

func (m *MemoryCatalog) Update(ctx context.Context, item *domain.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.TenantID][item.ID]; !ok {
		return port.ErrItemNotFound
	}
	clone := *item
	m.items[item.TenantID][item.ID] = &clone
	return nil
}

func (m *MemoryCatalog) Delete(ctx context.Context, tenantID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[tenantID][itemID]; !ok {
		return port.ErrItemNotFound
	}
	delete(m.items[tenantID], itemID)
	delete(m.order, itemID)
	return nil
}

func (m *MemoryCatalog) List(ctx context.Context, tenantID string) ([]domain.StockItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.StockItem, 0, len(m.items[tenantID]))
	for _, item := range m.items[tenantID] {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		return m.order[items[i].ID] < m.order[items[j].ID]
	})
	return items, nil
}

// MemoryLedger implements port.LedgerRepository with in-memory storage.
// Appended records are copied both ways so callers can never mutate them.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string][]domain.SaleRecord // tenantID -> records, append order
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string][]domain.SaleRecord)}
}

func (m *MemoryLedger) Append(ctx context.Context, record *domain.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.TenantID] = append(m.records[record.TenantID], copyRecord(*record))
	return nil
}

func (m *MemoryLedger) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.records[tenantID]
	out := make([]domain.SaleRecord, 0, len(stored))
	for _, rec := range stored {
		out = append(out, copyRecord(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRecord(rec domain.SaleRecord) domain.SaleRecord {
	lines := make([]domain.SaleLine, len(rec.Lines))
	copy(lines, rec.Lines)
	rec.Lines = lines
	return rec
}

// MemoryCache implements port.CacheRepository without Redis.
type MemoryCache struct {
	mu       sync.Mutex
	idemKeys map[string]bool
	counts   map[string]int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		idemKeys: make(map[string]bool),
		counts:   make(map[string]int),
	}
}

func (c *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idemKeys[key] {
		return false, nil
	}
	c.idemKeys[key] = true
	return true, nil
}

func (c *MemoryCache) GetLowStockCount(ctx context.Context, tenantID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, ok := c.counts[tenantID]
	return count, ok, nil
}

func (c *MemoryCache) SetLowStockCount(ctx context.Context, tenantID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[tenantID] = count
	return nil
}

func (c *MemoryCache) InvalidateLowStockCount(ctx context.Context, tenantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.counts, tenantID)
	return nil
}
