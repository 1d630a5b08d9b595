package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shopledger/pos/internal/core/domain"
	"github.com/shopledger/pos/internal/core/service"
	"github.com/shopledger/pos/internal/port"
)

// tenantHeader carries the tenant identity resolved by the authentication
// layer in front of this service. Requests without it are rejected.
const tenantHeader = "X-Tenant-ID"

type HTTPHandler struct {
	sales     *service.SaleService
	inventory *service.InventoryService
	cache     port.CacheRepository
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewHTTPHandler(sales *service.SaleService, inventory *service.InventoryService, cache port.CacheRepository, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		sales:     sales,
		inventory: inventory,
		cache:     cache,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/items", h.ListItems)
	mux.HandleFunc("POST /api/items", h.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.DeleteItem)
	mux.HandleFunc("GET /api/items/low-stock", h.LowStock)
	mux.HandleFunc("GET /api/sales", h.ListSales)
}

type CheckoutItem struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	RequestID    string         `json:"request_id" validate:"required"`
	CustomerName string         `json:"customer_name"`
	Items        []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

type CheckoutResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Record  *saleRecordBody   `json:"record,omitempty"`
	Lines   []lineOutcomeBody `json:"lines,omitempty"`
}

type saleRecordBody struct {
	BillID       string         `json:"bill_id"`
	CustomerName string         `json:"customer_name"`
	Items        []saleLineBody `json:"items"`
	Total        string         `json:"total"`
	Timestamp    time.Time      `json:"timestamp"`
}

type saleLineBody struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type lineOutcomeBody struct {
	ItemID  string `json:"item_id"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutResponse{Success: false, Message: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutResponse{Success: false, Message: err.Error()})
		return
	}

	idemKey := fmt.Sprintf("checkout:%s:%s", tenantID, req.RequestID)
	ok, err := h.cache.SetIdempotency(r.Context(), idemKey)
	if err != nil {
		h.logger.Error().Err(err).Msg("idempotency check failed")
		writeJSON(w, http.StatusInternalServerError, CheckoutResponse{Success: false, Message: "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, CheckoutResponse{Success: false, Message: "duplicate request"})
		return
	}

	cart := make(domain.Cart, 0, len(req.Items))
	for _, it := range req.Items {
		cart = append(cart, domain.CartLine{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	record, err := h.sales.Commit(r.Context(), tenantID, cart, req.CustomerName)
	if err != nil {
		h.writeCommitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{Success: true, Record: newSaleRecordBody(record)})
}

func (h *HTTPHandler) writeCommitError(w http.ResponseWriter, err error) {
	var partial *service.PartialCommitError
	var ledger *service.LedgerWriteError

	switch {
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, CheckoutResponse{Success: false, Message: err.Error()})
	case errors.Is(err, port.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, CheckoutResponse{Success: false, Message: err.Error()})
	case errors.As(err, &partial):
		lines := make([]lineOutcomeBody, 0, len(partial.Lines))
		for _, l := range partial.Lines {
			out := lineOutcomeBody{ItemID: l.ItemID, Applied: l.Applied}
			if l.Err != nil {
				out.Error = l.Err.Error()
			}
			lines = append(lines, out)
		}
		writeJSON(w, http.StatusConflict, CheckoutResponse{Success: false, Message: partial.Error(), Lines: lines})
	case errors.As(err, &ledger):
		writeJSON(w, http.StatusInternalServerError, CheckoutResponse{
			Success: false,
			Message: "sale was not recorded; stock has already been updated",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, CheckoutResponse{Success: false, Message: "internal error"})
	}
}

type ItemRequest struct {
	Name     string          `json:"name" validate:"required"`
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
}

type itemBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Status   string `json:"status"`
}

type ItemResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Item    *itemBody `json:"item,omitempty"`
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.inventory.CreateItem(r.Context(), tenantID, input)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemResponse{Success: true, Item: newItemBody(item)})
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.inventory.UpdateItem(r.Context(), tenantID, r.PathValue("id"), input)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Success: true, Item: newItemBody(item)})
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	if err := h.inventory.DeleteItem(r.Context(), tenantID, r.PathValue("id")); err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Success: true})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	items, err := h.inventory.ListItems(r.Context(), tenantID)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	bodies := make([]itemBody, 0, len(items))
	for i := range items {
		bodies = append(bodies, *newItemBody(&items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": bodies})
}

func (h *HTTPHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	count, err := h.inventory.LowStockCount(r.Context(), tenantID)
	if err != nil {
		h.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.sales.ListSales(r.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list sales failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "internal error"})
		return
	}

	bodies := make([]saleRecordBody, 0, len(records))
	for i := range records {
		bodies = append(bodies, *newSaleRecordBody(&records[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sales": bodies})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := r.Header.Get(tenantHeader)
	if tenantID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "missing tenant identity"})
		return "", false
	}
	return tenantID, true
}

func (h *HTTPHandler) decodeItem(w http.ResponseWriter, r *http.Request) (service.ItemInput, bool) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ItemResponse{Success: false, Message: "invalid request body"})
		return service.ItemInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ItemResponse{Success: false, Message: err.Error()})
		return service.ItemInput{}, false
	}
	return service.ItemInput{
		Name:      req.Name,
		SKU:       req.SKU,
		Quantity:  req.Quantity,
		UnitPrice: req.Price,
	}, true
}

func (h *HTTPHandler) writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidItem):
		writeJSON(w, http.StatusBadRequest, ItemResponse{Success: false, Message: err.Error()})
	case errors.Is(err, port.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, ItemResponse{Success: false, Message: err.Error()})
	default:
		h.logger.Error().Err(err).Msg("inventory operation failed")
		writeJSON(w, http.StatusInternalServerError, ItemResponse{Success: false, Message: "internal error"})
	}
}

func newSaleRecordBody(record *domain.SaleRecord) *saleRecordBody {
	items := make([]saleLineBody, 0, len(record.Lines))
	for _, line := range record.Lines {
		items = append(items, saleLineBody{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.UnitPrice.String(),
		})
	}
	return &saleRecordBody{
		BillID:       record.BillID,
		CustomerName: record.CustomerName,
		Items:        items,
		Total:        record.Total.String(),
		Timestamp:    record.Timestamp,
	}
}

func newItemBody(item *domain.StockItem) *itemBody {
	return &itemBody{
		ID:       item.ID,
		Name:     item.Name,
		SKU:      item.SKU,
		Quantity: item.Quantity,
		Price:    item.UnitPrice.String(),
		Status:   string(item.Status),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
