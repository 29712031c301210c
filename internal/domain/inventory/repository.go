package inventory

import (
	"context"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockEntryRepository defines the interface for stock batch persistence.
// Every aggregate considers Submitted batches only.
type StockEntryRepository interface {
	// Create inserts batches together with their items
	Create(ctx context.Context, entries ...*StockEntry) error

	// CancelFor marks all Submitted batches of voucher Cancelled and returns how many changed
	CancelFor(ctx context.Context, voucher shared.VoucherRef) (int64, error)

	// FindByVoucher returns all batches of voucher, including cancelled ones
	FindByVoucher(ctx context.Context, voucher shared.VoucherRef) ([]StockEntry, error)

	// Balance returns the per-item sum of a bucket; codes limits the items when not empty
	Balance(ctx context.Context, stockType StockType, codes ...string) (map[string]int64, error)
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByOrder returns receipts of an order in creation order
	FindByOrder(ctx context.Context, order shared.VoucherRef) ([]Receipt, error)

	// Save creates or updates a receipt
	Save(ctx context.Context, receipt *Receipt) error
}

// CheckoutRepository defines the interface for checkout persistence
type CheckoutRepository interface {
	// FindByPurchaseOrder returns checkouts of a Purchase Order in creation order
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]Checkout, error)

	// Save creates or updates a checkout
	Save(ctx context.Context, checkout *Checkout) error
}
