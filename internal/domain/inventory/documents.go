package inventory

import (
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Receipt marks goods of an order as physically moved: received from the
// supplier for a Purchase Order, handed to the customer for a Sales Order.
type Receipt struct {
	shared.BaseVoucher
	Order shared.VoucherRef
}

// NewReceipt creates a draft receipt for an order
func NewReceipt(kind shared.OrderKind, orderID uuid.UUID) (*Receipt, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Receipt can be made only for Sales Order or Purchase Order")
	}
	return &Receipt{
		BaseVoucher: shared.NewBaseVoucher(),
		Order:       shared.NewVoucherRef(kind.VoucherType(), orderID),
	}, nil
}

// Ref returns the voucher reference owning the receipt's ledger and stock rows
func (r *Receipt) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherReceipt, r.ID)
}

// Checkout reserves purchased stock for a submitted Purchase Order.
type Checkout struct {
	shared.BaseVoucher
	PurchaseOrderID uuid.UUID
}

// NewCheckout creates a draft checkout for a Purchase Order
func NewCheckout(purchaseOrderID uuid.UUID) *Checkout {
	return &Checkout{
		BaseVoucher:     shared.NewBaseVoucher(),
		PurchaseOrderID: purchaseOrderID,
	}
}

// Ref returns the voucher reference owning the checkout's stock rows
func (c *Checkout) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherCheckout, c.ID)
}
