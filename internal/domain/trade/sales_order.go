package trade

import (
	"fmt"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceType is a flat-rate service sold with an order
type ServiceType string

const (
	ServiceDeliveryToApartment ServiceType = "Delivery to Apartment"
	ServiceDeliveryToEntrance  ServiceType = "Delivery to Entrance"
	ServiceInstallation        ServiceType = "Installation"
)

// IsValid checks if the service type is known
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceDeliveryToApartment, ServiceDeliveryToEntrance, ServiceInstallation:
		return true
	}
	return false
}

// IsDelivery reports whether the service is a kind of delivery
func (t ServiceType) IsDelivery() bool {
	return t == ServiceDeliveryToApartment || t == ServiceDeliveryToEntrance
}

// Service is one service line of a Sales Order
type Service struct {
	Type ServiceType
	Rate int64
}

// PaymentStatus is derived from the paid percentage
type PaymentStatus string

const (
	PaymentStatusNone          PaymentStatus = ""
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
	PaymentStatusOverpaid      PaymentStatus = "Overpaid"
)

// DeliveryStatus is derived from receipts and purchase linkage
type DeliveryStatus string

const (
	DeliveryStatusNone       DeliveryStatus = ""
	DeliveryStatusToPurchase DeliveryStatus = "To Purchase"
	DeliveryStatusPurchased  DeliveryStatus = "Purchased"
	DeliveryStatusToDeliver  DeliveryStatus = "To Deliver"
	DeliveryStatusDelivered  DeliveryStatus = "Delivered"
)

// SalesOrderStatus is the document status shown to users
type SalesOrderStatus string

const (
	SalesOrderStatusDraft      SalesOrderStatus = "Draft"
	SalesOrderStatusInProgress SalesOrderStatus = "In Progress"
	SalesOrderStatusCompleted  SalesOrderStatus = "Completed"
	SalesOrderStatusCancelled  SalesOrderStatus = "Cancelled"
)

// PurchaseStage describes the Purchase Order a Sales Order is linked to
type PurchaseStage int

const (
	// PurchaseStageNone means no submitted Purchase Order references the order
	PurchaseStageNone PurchaseStage = iota
	// PurchaseStageOrdered means the linked Purchase Order waits for its goods
	PurchaseStageOrdered
	// PurchaseStageReceived means the linked Purchase Order has been received
	PurchaseStageReceived
)

// SalesOrderFacts carries the ledger, stock and linkage facts a Sales Order
// derives its amounts and statuses from.
type SalesOrderFacts struct {
	PaidAmount    int64
	HasReceipt    bool
	PurchaseStage PurchaseStage
}

// SalesOrder is a customer order. Every derived field is recomputed by
// Recompute and never trusted as stored.
type SalesOrder struct {
	shared.BaseVoucher
	Customer            string
	Items               []ItemLine
	ChildItems          []ChildItem
	Services            []Service
	FromAvailableStock  inventory.StockType
	FromPurchaseOrderID *uuid.UUID
	EditCommission      bool
	Commission          int64
	Margin              int64
	Discount            int64
	ItemsCost           int64
	ServiceAmount       int64
	TotalAmount         int64
	TotalQuantity       int64
	TotalWeight         float64
	PaidAmount          int64
	PendingAmount       int64
	PerPaid             decimal.Decimal
	PaymentStatus       PaymentStatus
	DeliveryStatus      DeliveryStatus
	Status              SalesOrderStatus
}

// NewSalesOrder creates a draft order for customer
func NewSalesOrder(customer string) (*SalesOrder, error) {
	if customer == "" {
		return nil, shared.NewValidationError("Customer is required")
	}
	return &SalesOrder{
		BaseVoucher: shared.NewBaseVoucher(),
		Customer:    customer,
		Status:      SalesOrderStatusDraft,
	}, nil
}

// Ref returns the order's voucher reference
func (o *SalesOrder) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherSalesOrder, o.ID)
}

// EnsureDraft rejects changes to submitted or cancelled orders
func (o *SalesOrder) EnsureDraft() error {
	if !o.IsDraft() {
		return shared.NewValidationError(fmt.Sprintf("Cannot modify Sales Order with status %s", o.DocStatus))
	}
	return nil
}

// SetCommission overrides the bracket commission with a manual percentage
func (o *SalesOrder) SetCommission(percentage int64) error {
	if percentage < 0 {
		return shared.NewValidationError("Commission cannot be negative")
	}
	o.Commission = percentage
	o.EditCommission = true
	return nil
}

// FromStock reports whether the order is fulfilled from existing stock
func (o *SalesOrder) FromStock() bool {
	return o.FromAvailableStock != ""
}

func (o *SalesOrder) validateFields() error {
	if o.Customer == "" {
		return shared.NewValidationError("Customer is required")
	}
	if o.Discount < 0 {
		return shared.NewValidationError("Discount cannot be negative")
	}
	switch o.FromAvailableStock {
	case "", inventory.AvailableActual:
	case inventory.AvailablePurchased:
		if o.FromPurchaseOrderID == nil {
			return shared.NewValidationError("From Purchase Order is required when ordering from Available Purchased")
		}
	default:
		return shared.NewValidationError(fmt.Sprintf("Can't order from %s", o.FromAvailableStock))
	}
	for _, s := range o.Services {
		if !s.Type.IsValid() {
			return shared.NewValidationError(fmt.Sprintf("Unknown service %s", s.Type))
		}
		if s.Rate < 0 {
			return shared.NewValidationError(fmt.Sprintf("Rate of service %s cannot be negative", s.Type))
		}
	}
	for _, it := range o.Items {
		if it.Qty < 0 {
			return shared.NewValidationError(fmt.Sprintf("Quantity of Item %s cannot be negative", it.ItemCode))
		}
	}
	return nil
}

// Recompute runs the validation pipeline: it normalizes the lines, refreshes
// them from the catalog and derives every amount and status from facts.
func (o *SalesOrder) Recompute(lookup catalog.Lookup, settings *pricing.CommissionSettings, facts SalesOrderFacts) error {
	if err := o.validateFields(); err != nil {
		return err
	}
	o.Items = DeleteEmpty(MergeSameItems(o.Items))
	if err := refreshFromCatalog(o.Items, lookup); err != nil {
		return err
	}
	children, err := expandChildren(o.Items, lookup)
	if err != nil {
		return err
	}
	o.ChildItems = children
	o.calculateItemTotals()
	o.calculateServiceAmount()
	if err := o.CalculateCommissionAndMargin(settings); err != nil {
		return err
	}
	o.TotalAmount = o.ItemsCost + o.Margin + o.ServiceAmount - o.Discount
	o.setPaidAmounts(facts.PaidAmount)
	o.SetStatuses(facts)
	return nil
}

func (o *SalesOrder) calculateItemTotals() {
	o.TotalQuantity, o.TotalWeight, o.ItemsCost = 0, 0, 0
	for _, it := range o.Items {
		o.TotalQuantity += it.Qty
		o.TotalWeight += it.TotalWeight()
		o.ItemsCost += it.Amount()
	}
}

func (o *SalesOrder) calculateServiceAmount() {
	o.ServiceAmount = 0
	for _, s := range o.Services {
		o.ServiceAmount += s.Rate
	}
}

// CalculateCommissionAndMargin looks up the bracket commission unless it was
// set manually, then derives the margin.
func (o *SalesOrder) CalculateCommissionAndMargin(settings *pricing.CommissionSettings) error {
	if !o.EditCommission {
		if settings == nil {
			return shared.NewValidationError("Commission Settings are not configured")
		}
		pct, err := settings.PercentageFor(o.ItemsCost)
		if err != nil {
			return err
		}
		o.Commission = pct
	}
	o.Margin = pricing.CalculateMargin(o.ItemsCost, o.Commission)
	return nil
}

func (o *SalesOrder) setPaidAmounts(paid int64) {
	o.PaidAmount = paid
	if o.TotalAmount == 0 {
		o.PerPaid = decimal.NewFromInt(100)
	} else {
		o.PerPaid = decimal.NewFromInt(paid).Div(decimal.NewFromInt(o.TotalAmount)).Mul(decimal.NewFromInt(100))
	}
	o.PendingAmount = o.TotalAmount - paid
}

// SetStatuses derives payment, delivery and document statuses
func (o *SalesOrder) SetStatuses(facts SalesOrderFacts) {
	o.DeliveryStatus = o.deliveryStatus(facts)
	o.PaymentStatus = o.paymentStatus()
	o.Status = o.documentStatus()
}

func (o *SalesOrder) paymentStatus() PaymentStatus {
	hundred := decimal.NewFromInt(100)
	switch {
	case o.IsCancelled():
		return PaymentStatusNone
	case o.PerPaid.GreaterThan(hundred):
		return PaymentStatusOverpaid
	case o.PerPaid.Equal(hundred):
		return PaymentStatusPaid
	case o.PerPaid.IsPositive():
		return PaymentStatusPartiallyPaid
	}
	return PaymentStatusUnpaid
}

func (o *SalesOrder) deliveryStatus(facts SalesOrderFacts) DeliveryStatus {
	switch {
	case o.IsCancelled():
		return DeliveryStatusNone
	case facts.HasReceipt:
		return DeliveryStatusDelivered
	case o.FromStock() && facts.PurchaseStage == PurchaseStageNone:
		if o.IsDraft() {
			return DeliveryStatusToPurchase
		}
		return DeliveryStatusToDeliver
	case facts.PurchaseStage == PurchaseStageReceived:
		return DeliveryStatusToDeliver
	case facts.PurchaseStage == PurchaseStageOrdered:
		return DeliveryStatusPurchased
	}
	return DeliveryStatusToPurchase
}

func (o *SalesOrder) documentStatus() SalesOrderStatus {
	switch o.DocStatus {
	case shared.DocStatusDraft:
		return SalesOrderStatusDraft
	case shared.DocStatusCancelled:
		return SalesOrderStatusCancelled
	}
	if o.PaymentStatus == PaymentStatusPaid && o.DeliveryStatus == DeliveryStatusDelivered {
		return SalesOrderStatusCompleted
	}
	return SalesOrderStatusInProgress
}

// Submit finalizes the order. Commission is frozen from now on.
func (o *SalesOrder) Submit() error {
	if len(o.Items) == 0 {
		return shared.NewValidationError("Sales Order has no items")
	}
	if err := o.MarkSubmitted(); err != nil {
		return err
	}
	o.EditCommission = true
	return nil
}

// SplitView returns the order's lines with every combination replaced by its
// child items.
func (o *SalesOrder) SplitView() []ItemLine {
	return splitView(o.Items, o.ChildItems)
}

// StockItems returns the split lines as stock quantities
func (o *SalesOrder) StockItems() []inventory.ItemQty {
	return ToStockItems(o.SplitView())
}

// SplitCombinations replaces the given combination lines by their child items.
// The caller recomputes the order afterwards.
func (o *SalesOrder) SplitCombinations(combos []string) {
	selected := make(map[string]struct{}, len(combos))
	for _, c := range combos {
		selected[c] = struct{}{}
	}
	items := make([]ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := selected[it.ItemCode]; !ok {
			items = append(items, it)
		}
	}
	for _, c := range o.ChildItems {
		if _, ok := selected[c.ParentItemCode]; ok {
			items = append(items, ItemLine{ItemCode: c.ItemCode, ItemName: c.ItemName, Qty: c.Qty})
		}
	}
	kept := o.ChildItems[:0]
	for _, c := range o.ChildItems {
		if _, ok := selected[c.ParentItemCode]; !ok {
			kept = append(kept, c)
		}
	}
	o.ChildItems = kept
	o.Items = items
}

// ApplyReturn removes returned quantities from the order's lines. Combinations
// whose children are returned are split first so only leaf lines are
// decremented. The caller recomputes the order afterwards.
func (o *SalesOrder) ApplyReturn(returned []ItemLine) {
	counts := CountQty(returned)
	var combos []string
	seen := map[string]struct{}{}
	for _, c := range o.ChildItems {
		if _, ok := counts[c.ItemCode]; !ok {
			continue
		}
		if _, ok := seen[c.ParentItemCode]; ok {
			continue
		}
		seen[c.ParentItemCode] = struct{}{}
		combos = append(combos, c.ParentItemCode)
	}
	if len(combos) > 0 {
		o.SplitCombinations(combos)
	}
	o.Items = MergeSameItems(o.Items)
	decrement(o.Items, counts)
	o.Items = MergeSameItems(DeleteEmpty(o.Items))
}

// RestoreReturn puts the lines of a voided return back on the order. The
// caller recomputes the order afterwards.
func (o *SalesOrder) RestoreReturn(returned []ItemLine) {
	for _, l := range returned {
		o.Items = append(o.Items, ItemLine{ItemCode: l.ItemCode, ItemName: l.ItemName, Qty: l.Qty})
	}
	o.Items = MergeSameItems(DeleteEmpty(o.Items))
}

// FoldedInto reports whether the order takes its goods from the Available
// Purchased stock of Purchase Order id.
func (o *SalesOrder) FoldedInto(id uuid.UUID) bool {
	return o.FromAvailableStock == inventory.AvailablePurchased &&
		o.FromPurchaseOrderID != nil && *o.FromPurchaseOrderID == id
}

// ServiceAmounts splits the service amount into delivery and installation
func (o *SalesOrder) ServiceAmounts() (delivery, installation int64) {
	for _, s := range o.Services {
		if s.Type.IsDelivery() {
			delivery += s.Rate
		} else {
			installation += s.Rate
		}
	}
	return delivery, installation
}

// SalesAmounts returns the amounts recognized when the order is delivered
func (o *SalesOrder) SalesAmounts() finance.SalesAmounts {
	delivery, installation := o.ServiceAmounts()
	return finance.SalesAmounts{
		TotalAmount:  o.TotalAmount,
		ItemsCost:    o.ItemsCost,
		Margin:       o.Margin,
		Discount:     o.Discount,
		Delivery:     delivery,
		Installation: installation,
	}
}

// Clone returns a deep copy of the order
func (o *SalesOrder) Clone() *SalesOrder {
	c := *o
	c.Items = append([]ItemLine(nil), o.Items...)
	c.ChildItems = append([]ChildItem(nil), o.ChildItems...)
	c.Services = append([]Service(nil), o.Services...)
	if o.FromPurchaseOrderID != nil {
		id := *o.FromPurchaseOrderID
		c.FromPurchaseOrderID = &id
	}
	return &c
}
