package trade

import (
	"context"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/domain/trade"
)

// TransactionScope runs trading operations atomically.
// If fn returns an error, every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction,
// and locks taken through Locker are released when it ends.
type Repositories interface {
	SalesOrders() trade.SalesOrderRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	SalesReturns() trade.SalesReturnRepository
	PurchaseReturns() trade.PurchaseReturnRepository
	Payments() finance.PaymentRepository
	Accounts() finance.AccountRepository
	GLEntries() finance.GLEntryRepository
	Receipts() inventory.ReceiptRepository
	Checkouts() inventory.CheckoutRepository
	StockEntries() inventory.StockEntryRepository
	Locker() shared.Locker
}
