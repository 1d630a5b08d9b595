package port

import "context"

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// GetLowStockCount returns the cached low-stock item count for the
	// tenant; ok is false on a cache miss.
	GetLowStockCount(ctx context.Context, tenantID string) (count int, ok bool, err error)

	SetLowStockCount(ctx context.Context, tenantID string, count int) error

	// InvalidateLowStockCount drops the cached count after any catalog mutation.
	InvalidateLowStockCount(ctx context.Context, tenantID string) error
}
