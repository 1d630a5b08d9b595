package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/port"
)

// ReservationEngine validates a cart against the catalog and computes the
// per-line stock deltas a commit will apply.
type ReservationEngine struct {
	catalog port.CatalogRepository
}

func NewReservationEngine(catalog port.CatalogRepository) *ReservationEngine {
	return &ReservationEngine{catalog: catalog}
}

// PlanLine captures one cart line against current catalog state. Name and
// UnitPrice are the snapshot values recorded on the sale.
type PlanLine struct {
	ItemID      string
	Name        string
	UnitPrice   decimal.Decimal
	Quantity    int
	NewQuantity int
	NewStatus   domain.Status
}

type Plan struct {
	Lines []PlanLine
}

// Total sums quantity * unit price across the plan's lines.
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Plan fetches every cart line scoped to tenantID and computes the resulting
// quantity and status. A line referencing a missing or foreign-tenant item
// fails the whole plan with ErrItemNotFound before anything is written.
// Requested quantity may exceed quantity on hand; oversell surfaces as
// negative stock, matching the terminal's historical behavior.
func (e *ReservationEngine) Plan(ctx context.Context, tenantID string, cart domain.Cart) (*Plan, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s", ErrInvalidQuantity, line.ItemID)
		}
	}

	lines := make([]PlanLine, 0, len(cart))
	for _, cl := range cart {
		item, err := e.catalog.Find(ctx, tenantID, cl.ItemID)
		if err != nil {
			if errors.Is(err, port.ErrItemNotFound) {
				return nil, fmt.Errorf("item %s: %w", cl.ItemID, port.ErrItemNotFound)
			}
			return nil, fmt.Errorf("fetch item %s: %w", cl.ItemID, err)
		}

		newQuantity := item.Quantity - cl.Quantity
		lines = append(lines, PlanLine{
			ItemID:      item.ID,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    cl.Quantity,
			NewQuantity: newQuantity,
			NewStatus:   domain.StatusForQuantity(newQuantity),
		})
	}

	return &Plan{Lines: lines}, nil
}
