package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomer is recorded when the terminal submits a blank customer name.
const WalkInCustomer = "Walk-in Customer"

// CartLine is one requested line of a checkout. Carts are ephemeral: they
// are fully consumed by a single commit attempt and never persisted.
type CartLine struct {
	ItemID   string
	Quantity int
}

type Cart []CartLine

// SaleLine is a point-in-time snapshot of the sold item. It deliberately
// holds no reference back to the catalog, so later edits to an item never
// alter a recorded sale.
type SaleLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleRecord is one completed sale. Records are immutable once appended;
// Total is computed once at commit time and never recomputed.
type SaleRecord struct {
	BillID       string
	TenantID     string
	CustomerName string
	Lines        []SaleLine
	Total        decimal.Decimal
	Timestamp    time.Time
}
