package trade

import (
	"fmt"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderStatus represents the status of a Purchase Order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "Draft"
	PurchaseOrderStatusToReceive PurchaseOrderStatus = "To Receive"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "Completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "Cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusToReceive,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrderSalesOrder links a Sales Order to a Purchase Order
type PurchaseOrderSalesOrder struct {
	SalesOrderID uuid.UUID
	Customer     string
	TotalAmount  int64
}

// PurchaseOrder consolidates Sales Orders and speculative items to sell into
// one supplier order.
type PurchaseOrder struct {
	shared.BaseVoucher
	Name            string
	SalesOrders     []PurchaseOrderSalesOrder
	ItemsToSell     []ItemLine
	DeliveryCost    int64
	SalesOrderCost  int64
	ItemsToSellCost int64
	TotalAmount     int64
	TotalWeight     float64
	Status          PurchaseOrderStatus
}

// NewPurchaseOrder creates a draft Purchase Order
func NewPurchaseOrder(name string) *PurchaseOrder {
	return &PurchaseOrder{
		BaseVoucher: shared.NewBaseVoucher(),
		Name:        name,
		Status:      PurchaseOrderStatusDraft,
	}
}

// Ref returns the order's voucher reference
func (o *PurchaseOrder) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherPurchaseOrder, o.ID)
}

// EnsureDraft rejects changes to submitted or cancelled orders
func (o *PurchaseOrder) EnsureDraft() error {
	if !o.IsDraft() {
		return shared.NewValidationError(fmt.Sprintf("Cannot modify Purchase Order with status %s", o.Status))
	}
	return nil
}

// SalesOrderIDs returns the linked Sales Order ids in link order
func (o *PurchaseOrder) SalesOrderIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(o.SalesOrders))
	for _, s := range o.SalesOrders {
		out = append(out, s.SalesOrderID)
	}
	return out
}

// HasSalesOrder reports whether id is linked to the order
func (o *PurchaseOrder) HasSalesOrder(id uuid.UUID) bool {
	for _, s := range o.SalesOrders {
		if s.SalesOrderID == id {
			return true
		}
	}
	return false
}

// LinkSalesOrder appends a Sales Order unless it is already linked
func (o *PurchaseOrder) LinkSalesOrder(id uuid.UUID) {
	if !o.HasSalesOrder(id) {
		o.SalesOrders = append(o.SalesOrders, PurchaseOrderSalesOrder{SalesOrderID: id})
	}
}

func (o *PurchaseOrder) deleteSalesOrderDuplicates() {
	seen := make(map[uuid.UUID]struct{}, len(o.SalesOrders))
	out := o.SalesOrders[:0]
	for _, s := range o.SalesOrders {
		if _, ok := seen[s.SalesOrderID]; ok {
			continue
		}
		seen[s.SalesOrderID] = struct{}{}
		out = append(out, s)
	}
	o.SalesOrders = out
}

// Recompute validates the order and derives its totals. linked must hold every
// linked Sales Order; cancelled ones are excluded from the totals.
func (o *PurchaseOrder) Recompute(lookup catalog.Lookup, linked map[uuid.UUID]*SalesOrder) error {
	o.deleteSalesOrderDuplicates()
	if len(o.SalesOrders) == 0 && len(o.ItemsToSell) == 0 {
		return shared.NewValidationError("Add Sales Orders or Items to Sell")
	}
	if o.DeliveryCost < 0 {
		return shared.NewValidationError("Delivery Cost cannot be negative")
	}
	for _, it := range o.ItemsToSell {
		if it.Qty < 0 {
			return shared.NewValidationError(fmt.Sprintf("Quantity of Item %s cannot be negative", it.ItemCode))
		}
	}
	o.ItemsToSell = DeleteEmpty(MergeSameItems(o.ItemsToSell))
	if err := refreshFromCatalog(o.ItemsToSell, lookup); err != nil {
		return err
	}

	o.SalesOrderCost, o.ItemsToSellCost, o.TotalWeight = 0, 0, 0
	for i, link := range o.SalesOrders {
		so, ok := linked[link.SalesOrderID]
		if !ok {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s not found", link.SalesOrderID))
		}
		o.SalesOrders[i].Customer = so.Customer
		o.SalesOrders[i].TotalAmount = so.TotalAmount
		if so.IsCancelled() {
			continue
		}
		o.SalesOrderCost += so.ItemsCost
		o.TotalWeight += so.TotalWeight
	}
	for _, it := range o.ItemsToSell {
		o.ItemsToSellCost += it.Amount()
		o.TotalWeight += it.TotalWeight()
	}
	o.TotalAmount = o.SalesOrderCost + o.ItemsToSellCost + o.DeliveryCost
	if o.IsDraft() {
		o.Status = PurchaseOrderStatusDraft
	}
	return nil
}

// ItemsCost returns the cost of goods paid to the supplier
func (o *PurchaseOrder) ItemsCost() int64 {
	return o.SalesOrderCost + o.ItemsToSellCost
}

// ItemsToSellSplit returns the items to sell with every combination replaced by
// its children priced from the catalog.
func (o *PurchaseOrder) ItemsToSellSplit(lookup catalog.Lookup) []ItemLine {
	return MergeSameItems(splitLinesWithCatalog(o.ItemsToSell, lookup))
}

// SplitItemsToSell replaces the items to sell by their split view
func (o *PurchaseOrder) SplitItemsToSell(lookup catalog.Lookup) {
	o.ItemsToSell = o.ItemsToSellSplit(lookup)
}

// TakeItemsToSell removes quantities from the items to sell, splitting
// combinations first. Returns a validation error when the pool is short.
func (o *PurchaseOrder) TakeItemsToSell(items []ItemLine, lookup catalog.Lookup) error {
	o.SplitItemsToSell(lookup)
	pool := CountQty(o.ItemsToSell)
	for code, qty := range CountQty(items) {
		if pool[code] < qty {
			return shared.NewValidationError(fmt.Sprintf(
				"Insufficient quantity %d for Item %s: expected not more than %d.", qty, code, pool[code]))
		}
	}
	o.RemoveItemsToSell(items)
	return nil
}

// RemoveItemsToSell decrements the split items to sell by items and drops
// emptied lines. Quantities beyond the pool are ignored.
func (o *PurchaseOrder) RemoveItemsToSell(items []ItemLine) {
	decrement(o.ItemsToSell, CountQty(items))
	o.ItemsToSell = MergeSameItems(DeleteEmpty(o.ItemsToSell))
}

// AddItemsToSell pushes items into the speculative pool
func (o *PurchaseOrder) AddItemsToSell(items []ItemLine) {
	o.ItemsToSell = MergeSameItems(append(o.ItemsToSell, items...))
}

// EnsureStatus returns a validation error unless the order has one of statuses
func (o *PurchaseOrder) EnsureStatus(msg string, statuses ...PurchaseOrderStatus) error {
	for _, s := range statuses {
		if o.Status == s {
			return nil
		}
	}
	return shared.NewValidationError(msg)
}

// Submit finalizes the order and waits for goods
func (o *PurchaseOrder) Submit() error {
	if err := o.MarkSubmitted(); err != nil {
		return err
	}
	o.Status = PurchaseOrderStatusToReceive
	return nil
}

// MarkReceived records that the goods arrived
func (o *PurchaseOrder) MarkReceived() error {
	if err := o.EnsureStatus("Purchase Order should be To Receive", PurchaseOrderStatusToReceive); err != nil {
		return err
	}
	o.Status = PurchaseOrderStatusCompleted
	o.Touch()
	return nil
}

// Cancel voids the order. Only orders waiting for goods can be cancelled.
func (o *PurchaseOrder) Cancel() error {
	if err := o.EnsureStatus("Only Purchase Orders with status To Receive can be cancelled", PurchaseOrderStatusToReceive); err != nil {
		return err
	}
	if err := o.MarkCancelled(); err != nil {
		return err
	}
	o.Status = PurchaseOrderStatusCancelled
	return nil
}

// EnsureCancellable rejects cancellation while a live Sales Order takes its
// goods from the order's Available Purchased stock.
func (o *PurchaseOrder) EnsureCancellable(linked map[uuid.UUID]*SalesOrder) error {
	for _, link := range o.SalesOrders {
		so, ok := linked[link.SalesOrderID]
		if !ok || so.IsCancelled() || !so.FoldedInto(o.ID) {
			continue
		}
		return shared.NewValidationError(fmt.Sprintf(
			"Cancel Sales Order %s first: it is ordered from Available Purchased of this Purchase Order", so.ID))
	}
	return nil
}

// PurchaseStage maps the order's status to the stage seen by linked Sales Orders
func (o *PurchaseOrder) PurchaseStage() PurchaseStage {
	if !o.IsSubmitted() {
		return PurchaseStageNone
	}
	switch o.Status {
	case PurchaseOrderStatusToReceive:
		return PurchaseStageOrdered
	case PurchaseOrderStatusCompleted:
		return PurchaseStageReceived
	}
	return PurchaseStageNone
}

// CheckoutBatches returns the Reserved Purchased and Available Purchased
// quantities for linked, not cancelled Sales Orders and the items to sell.
func (o *PurchaseOrder) CheckoutBatches(linked map[uuid.UUID]*SalesOrder, lookup catalog.Lookup) (reserved, available []inventory.ItemQty) {
	var orderLines []ItemLine
	for _, link := range o.SalesOrders {
		so, ok := linked[link.SalesOrderID]
		if !ok || so.IsCancelled() {
			continue
		}
		orderLines = append(orderLines, so.SplitView()...)
	}
	return ToStockItems(orderLines), ToStockItems(o.ItemsToSellSplit(lookup))
}
