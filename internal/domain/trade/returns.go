package trade

import (
	"fmt"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AvailableToAdd returns, per item code of voucherLines, the quantity not yet
// on the return, sorted by item name. voucherLines must already be in split
// view; lines whose remaining quantity is zero are omitted.
func AvailableToAdd(voucherLines, returned []ItemLine) []ItemLine {
	merged := MergeSameItems(append([]ItemLine(nil), voucherLines...))
	inReturn := CountQty(returned)
	out := make([]ItemLine, 0, len(merged))
	for _, l := range merged {
		qty := l.Qty - inReturn[l.ItemCode]
		if qty <= 0 {
			continue
		}
		l.Qty = qty
		out = append(out, l)
	}
	sortByName(out)
	return out
}

// ValidateReturnItems checks that every requested quantity is positive and
// does not exceed what is available.
func ValidateReturnItems(available, requested []ItemLine) error {
	counter := CountQty(available)
	for _, r := range requested {
		limit := counter[r.ItemCode]
		if r.Qty <= 0 || r.Qty > limit {
			return shared.NewValidationError(fmt.Sprintf(
				"Insufficient quantity %d for Item %s: expected not more than %d.", r.Qty, r.ItemCode, limit))
		}
		counter[r.ItemCode] = limit - r.Qty
	}
	return nil
}

// addReturnItems validates requested lines against available and returns them
// with name and rate taken from the voucher.
func addReturnItems(current, available, requested []ItemLine) ([]ItemLine, error) {
	if err := ValidateReturnItems(available, requested); err != nil {
		return nil, err
	}
	byCode := make(map[string]ItemLine, len(available))
	for _, a := range available {
		byCode[a.ItemCode] = a
	}
	out := append([]ItemLine(nil), current...)
	for _, r := range requested {
		src := byCode[r.ItemCode]
		out = append(out, ItemLine{
			ItemCode: r.ItemCode,
			ItemName: src.ItemName,
			Qty:      r.Qty,
			Rate:     src.Rate,
			Weight:   src.Weight,
		})
	}
	return out, nil
}

// allReturned reports whether returned covers every remaining voucher line
func allReturned(voucherLines, returned []ItemLine) bool {
	return len(AvailableToAdd(voucherLines, returned)) == 0
}

func validateReturnBound(voucherLines, returned []ItemLine) error {
	return ValidateReturnItems(MergeSameItems(append([]ItemLine(nil), voucherLines...)), MergeSameItems(append([]ItemLine(nil), returned...)))
}

func sumAmount(lines []ItemLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount()
	}
	return total
}

// SalesReturn returns part of a Sales Order.
type SalesReturn struct {
	shared.BaseVoucher
	SalesOrderID         uuid.UUID
	FromPurchaseReturnID *uuid.UUID
	// SystemGenerated is set on returns created by Sales Order cancellation.
	// They may cover every item and only move stock.
	SystemGenerated    bool
	Items              []ItemLine
	ReturnedPaidAmount int64
}

// NewSalesReturn creates a draft return against a Sales Order
func NewSalesReturn(salesOrderID uuid.UUID) *SalesReturn {
	return &SalesReturn{
		BaseVoucher:  shared.NewBaseVoucher(),
		SalesOrderID: salesOrderID,
	}
}

// Ref returns the return's voucher reference
func (r *SalesReturn) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherSalesReturn, r.ID)
}

// TotalAmount returns the value of the returned items
func (r *SalesReturn) TotalAmount() int64 {
	return sumAmount(r.Items)
}

// ValidateVoucher checks that the Sales Order can accept returns
func (r *SalesReturn) ValidateVoucher(so *SalesOrder) error {
	if !so.IsSubmitted() {
		return shared.NewValidationError("Sales Order should be submitted")
	}
	switch so.DeliveryStatus {
	case DeliveryStatusPurchased, DeliveryStatusToDeliver, DeliveryStatusDelivered:
		return nil
	}
	return shared.NewValidationError("Delivery Status should be Purchased, To Deliver or Delivered")
}

// AvailableToAdd lists what can still be added to the return
func (r *SalesReturn) AvailableToAdd(so *SalesOrder) []ItemLine {
	return AvailableToAdd(so.SplitView(), r.Items)
}

// AddItems validates and appends requested lines. so must have its split view
// backfilled from the catalog.
func (r *SalesReturn) AddItems(available, requested []ItemLine) error {
	if !r.IsDraft() {
		return shared.NewValidationError("Cannot add items to submitted Return")
	}
	items, err := addReturnItems(r.Items, available, requested)
	if err != nil {
		return err
	}
	r.Items = items
	return nil
}

// Validate checks the return against its Sales Order
func (r *SalesReturn) Validate(so *SalesOrder) error {
	r.Items = DeleteEmpty(r.Items)
	if len(r.Items) == 0 {
		return shared.NewValidationError("Return has no items")
	}
	if err := r.ValidateVoucher(so); err != nil {
		return err
	}
	lines := so.SplitView()
	if err := validateReturnBound(lines, r.Items); err != nil {
		return err
	}
	if !r.SystemGenerated && r.FromPurchaseReturnID == nil && allReturned(lines, r.Items) {
		return shared.NewValidationError("Can't return all items")
	}
	return nil
}

// CalculateReturnedPaidAmount sets the money to give back: whatever was paid
// beyond the order's total after the return.
func (r *SalesReturn) CalculateReturnedPaidAmount(paidAmount, newTotal int64) {
	r.ReturnedPaidAmount = paidAmount - newTotal
	if r.ReturnedPaidAmount < 0 {
		r.ReturnedPaidAmount = 0
	}
}

// Submit finalizes the return
func (r *SalesReturn) Submit() error {
	return r.MarkSubmitted()
}

// Cancel is not supported for returns
func (r *SalesReturn) Cancel() error {
	return shared.NewValidationError("Not allowed to cancel Return")
}

// StockMove describes how returned units move between buckets. An empty From
// means an inflow into To only.
type StockMove struct {
	From inventory.StockType
	To   inventory.StockType
}

// SalesReturnStockMove maps the Sales Order's delivery stage to the buckets
// returned units move between.
func SalesReturnStockMove(status DeliveryStatus) (StockMove, error) {
	switch status {
	case DeliveryStatusPurchased:
		return StockMove{From: inventory.ReservedPurchased, To: inventory.AvailablePurchased}, nil
	case DeliveryStatusToDeliver:
		return StockMove{From: inventory.ReservedActual, To: inventory.AvailableActual}, nil
	case DeliveryStatusDelivered:
		return StockMove{To: inventory.AvailableActual}, nil
	}
	return StockMove{}, shared.NewValidationError("Delivery Status should be Purchased, To Deliver or Delivered")
}

// PurchaseReturn returns part of a Purchase Order to the supplier.
type PurchaseReturn struct {
	shared.BaseVoucher
	PurchaseOrderID    uuid.UUID
	Items              []ItemLine
	ReturnedPaidAmount int64
}

// NewPurchaseReturn creates a draft return against a Purchase Order
func NewPurchaseReturn(purchaseOrderID uuid.UUID) *PurchaseReturn {
	return &PurchaseReturn{
		BaseVoucher:     shared.NewBaseVoucher(),
		PurchaseOrderID: purchaseOrderID,
	}
}

// Ref returns the return's voucher reference
func (r *PurchaseReturn) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherPurchaseReturn, r.ID)
}

// ValidateVoucher checks that the Purchase Order can accept returns
func (r *PurchaseReturn) ValidateVoucher(po *PurchaseOrder) error {
	if !po.IsSubmitted() {
		return shared.NewValidationError("Purchase Order should be submitted")
	}
	return po.EnsureStatus("Status should be To Receive or Completed",
		PurchaseOrderStatusToReceive, PurchaseOrderStatusCompleted)
}

// AddItems validates and appends requested lines
func (r *PurchaseReturn) AddItems(available, requested []ItemLine) error {
	if !r.IsDraft() {
		return shared.NewValidationError("Cannot add items to submitted Return")
	}
	items, err := addReturnItems(r.Items, available, requested)
	if err != nil {
		return err
	}
	r.Items = items
	r.CalculateReturnedPaidAmount()
	return nil
}

// Validate checks the return against all lines of its Purchase Order
func (r *PurchaseReturn) Validate(po *PurchaseOrder, lines []ItemLine) error {
	r.Items = DeleteEmpty(r.Items)
	if len(r.Items) == 0 {
		return shared.NewValidationError("Return has no items")
	}
	if err := r.ValidateVoucher(po); err != nil {
		return err
	}
	if err := validateReturnBound(lines, r.Items); err != nil {
		return err
	}
	if allReturned(lines, r.Items) {
		return shared.NewValidationError("Can't return all items")
	}
	r.CalculateReturnedPaidAmount()
	return nil
}

// CalculateReturnedPaidAmount sets the money the supplier gives back
func (r *PurchaseReturn) CalculateReturnedPaidAmount() {
	r.ReturnedPaidAmount = sumAmount(r.Items)
}

// Submit finalizes the return
func (r *PurchaseReturn) Submit() error {
	return r.MarkSubmitted()
}

// ItemsToSellShare returns the part of the return that was taken from the
// Purchase Order's items to sell: everything not carried by the Sales Returns
// it spawned.
func (r *PurchaseReturn) ItemsToSellShare(spawned []SalesReturn) []ItemLine {
	taken := map[string]int64{}
	for _, sr := range spawned {
		for code, qty := range CountQty(sr.Items) {
			taken[code] += qty
		}
	}
	var out []ItemLine
	for _, l := range MergeSameItems(append([]ItemLine(nil), r.Items...)) {
		l.Qty -= taken[l.ItemCode]
		if l.Qty > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Cancel voids the return. Goods must not have been received yet.
func (r *PurchaseReturn) Cancel(po *PurchaseOrder) error {
	if po.Status != PurchaseOrderStatusToReceive {
		return shared.NewValidationError("Allowed to cancel Purchase Return only if status of Order is To Receive")
	}
	return r.MarkCancelled()
}

// SourcedLines are the split lines of one part of a Purchase Order: a linked
// Sales Order, or the items to sell when SalesOrderID is uuid.Nil.
type SourcedLines struct {
	SalesOrderID uuid.UUID
	Lines        []ItemLine
}

// OrderAllocation is the share of a Purchase Return taken from one Sales Order
type OrderAllocation struct {
	SalesOrderID uuid.UUID
	Items        []ItemLine
}

// Allocation distributes returned units over the parts of a Purchase Order
type Allocation struct {
	ItemsToSell []ItemLine
	SalesOrders []OrderAllocation
}

// AllocateReturn assigns returned quantities to the parts of a Purchase Order,
// walking pool in order: items to sell first, then linked Sales Orders.
func AllocateReturn(returned []ItemLine, pool []SourcedLines) Allocation {
	type entry struct {
		source uuid.UUID
		line   ItemLine
	}
	byCode := map[string][]entry{}
	for _, src := range pool {
		for _, l := range MergeSameItems(append([]ItemLine(nil), src.Lines...)) {
			byCode[l.ItemCode] = append(byCode[l.ItemCode], entry{source: src.SalesOrderID, line: l})
		}
	}

	var res Allocation
	orderIndex := map[uuid.UUID]int{}
	add := func(source uuid.UUID, l ItemLine) {
		if source == uuid.Nil {
			res.ItemsToSell = append(res.ItemsToSell, l)
			return
		}
		i, ok := orderIndex[source]
		if !ok {
			i = len(res.SalesOrders)
			orderIndex[source] = i
			res.SalesOrders = append(res.SalesOrders, OrderAllocation{SalesOrderID: source})
		}
		res.SalesOrders[i].Items = append(res.SalesOrders[i].Items, l)
	}

	counts := CountQty(returned)
	for _, code := range Codes(returned) {
		qty := counts[code]
		for _, e := range byCode[code] {
			if qty <= 0 {
				break
			}
			l := e.line
			if l.Qty >= qty {
				l.Qty = qty
				add(e.source, l)
				qty = 0
				break
			}
			add(e.source, l)
			qty -= l.Qty
		}
	}
	return res
}

// PurchaseReturnLines builds the allocation pool of a Purchase Order:
// split items to sell first, then every linked, not cancelled Sales Order.
func PurchaseReturnLines(po *PurchaseOrder, itemsToSell []ItemLine, linked map[uuid.UUID]*SalesOrder) []SourcedLines {
	pool := []SourcedLines{{SalesOrderID: uuid.Nil, Lines: itemsToSell}}
	for _, id := range po.SalesOrderIDs() {
		so, ok := linked[id]
		if !ok || so.IsCancelled() {
			continue
		}
		pool = append(pool, SourcedLines{SalesOrderID: id, Lines: so.SplitView()})
	}
	return pool
}

// FlattenPool returns all lines of a pool
func FlattenPool(pool []SourcedLines) []ItemLine {
	var out []ItemLine
	for _, p := range pool {
		out = append(out, p.Lines...)
	}
	return out
}
