package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNominal  Status = "NOMINAL"
	StatusLowStock Status = "LOW_STOCK"
)

// LowStockThreshold is the quantity below which an item is flagged LOW_STOCK.
const LowStockThreshold = 5

// StatusForQuantity applies the low-stock rule. It must be re-applied on
// every mutation of an item's quantity.
func StatusForQuantity(quantity int) Status {
	if quantity < LowStockThreshold {
		return StatusLowStock
	}
	return StatusNominal
}

type StockItem struct {
	ID        string
	TenantID  string
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
