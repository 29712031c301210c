package finance

import (
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Payment records money received for a Sales Order or paid for a Purchase Order.
// Its ledger entries are owned by the payment itself and voided with it.
type Payment struct {
	shared.BaseVoucher
	Order        shared.VoucherRef
	Amount       int64
	PaidWithCash bool
}

// NewPayment creates a draft payment against an order
func NewPayment(kind shared.OrderKind, orderID uuid.UUID, amount int64, paidWithCash bool) (*Payment, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Payment can be made only for Sales Order or Purchase Order")
	}
	if amount <= 0 {
		return nil, shared.NewValidationError("Amount should be more than zero")
	}
	return &Payment{
		BaseVoucher:  shared.NewBaseVoucher(),
		Order:        shared.NewVoucherRef(kind.VoucherType(), orderID),
		Amount:       amount,
		PaidWithCash: paidWithCash,
	}, nil
}

// Ref returns the voucher reference owning the payment's ledger entries
func (p *Payment) Ref() shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherPayment, p.ID)
}
