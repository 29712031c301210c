package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// DocStatus is the three-state submission lifecycle shared by every voucher.
// Only Submitted rows count toward balances; Cancelled rows are kept for audit.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// String returns the string representation of DocStatus
func (s DocStatus) String() string {
	switch s {
	case DocStatusDraft:
		return "Draft"
	case DocStatusSubmitted:
		return "Submitted"
	case DocStatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("DocStatus(%d)", int(s))
}

// IsValid checks if the status is a known DocStatus
func (s DocStatus) IsValid() bool {
	return s >= DocStatusDraft && s <= DocStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s DocStatus) CanTransitionTo(target DocStatus) bool {
	switch s {
	case DocStatusDraft:
		return target == DocStatusSubmitted
	case DocStatusSubmitted:
		return target == DocStatusCancelled
	}
	return false
}

// VoucherType enumerates every kind of document that can own ledger or stock rows.
type VoucherType string

const (
	VoucherPayment        VoucherType = "Payment"
	VoucherReceipt        VoucherType = "Receipt"
	VoucherCheckout       VoucherType = "Checkout"
	VoucherSalesOrder     VoucherType = "Sales Order"
	VoucherPurchaseOrder  VoucherType = "Purchase Order"
	VoucherSalesReturn    VoucherType = "Sales Return"
	VoucherPurchaseReturn VoucherType = "Purchase Return"
)

// IsValid checks if the voucher type is known
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherPayment, VoucherReceipt, VoucherCheckout, VoucherSalesOrder,
		VoucherPurchaseOrder, VoucherSalesReturn, VoucherPurchaseReturn:
		return true
	}
	return false
}

// String returns the string representation of VoucherType
func (t VoucherType) String() string {
	return string(t)
}

// OrderKind selects which order a Payment or Receipt belongs to.
type OrderKind string

const (
	OrderKindSales    OrderKind = OrderKind(VoucherSalesOrder)
	OrderKindPurchase OrderKind = OrderKind(VoucherPurchaseOrder)
)

// IsValid checks if the order kind is known
func (k OrderKind) IsValid() bool {
	return k == OrderKindSales || k == OrderKindPurchase
}

// VoucherType returns the voucher type of the order
func (k OrderKind) VoucherType() VoucherType {
	return VoucherType(k)
}

// VoucherRef identifies an owning voucher by type and id instead of a live pointer.
type VoucherRef struct {
	Type VoucherType
	ID   uuid.UUID
}

// NewVoucherRef creates a voucher reference
func NewVoucherRef(t VoucherType, id uuid.UUID) VoucherRef {
	return VoucherRef{Type: t, ID: id}
}

// String returns "<type> <id>"
func (r VoucherRef) String() string {
	return fmt.Sprintf("%s %s", r.Type, r.ID)
}

// IsZero reports whether the reference is unset
func (r VoucherRef) IsZero() bool {
	return r.Type == "" && r.ID == uuid.Nil
}
