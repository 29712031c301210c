package persistence

import (
	"context"

	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories provides access to all repositories over one *gorm.DB,
// usually a transaction.
type GormRepositories struct {
	tx     *gorm.DB
	locker shared.Locker
}

// NewGormRepositories binds every repository to tx
func NewGormRepositories(tx *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: tx, locker: lockerFor(tx)}
}

// SalesOrders returns the sales order repository scoped to the current transaction.
func (r *GormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction.
func (r *GormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// SalesReturns returns the sales return repository scoped to the current transaction.
func (r *GormRepositories) SalesReturns() trade.SalesReturnRepository {
	return NewGormSalesReturnRepository(r.tx)
}

// PurchaseReturns returns the purchase return repository scoped to the current transaction.
func (r *GormRepositories) PurchaseReturns() trade.PurchaseReturnRepository {
	return NewGormPurchaseReturnRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *GormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Accounts returns the account repository scoped to the current transaction.
func (r *GormRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// GLEntries returns the GL entry repository scoped to the current transaction.
func (r *GormRepositories) GLEntries() finance.GLEntryRepository {
	return NewGormGLEntryRepository(r.tx)
}

// Receipts returns the receipt repository scoped to the current transaction.
func (r *GormRepositories) Receipts() inventory.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

// Checkouts returns the checkout repository scoped to the current transaction.
func (r *GormRepositories) Checkouts() inventory.CheckoutRepository {
	return NewGormCheckoutRepository(r.tx)
}

// StockEntries returns the stock entry repository scoped to the current transaction.
func (r *GormRepositories) StockEntries() inventory.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// Locker returns the advisory locker of the current transaction.
func (r *GormRepositories) Locker() shared.Locker {
	return r.locker
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ apptrade.Repositories = (*GormRepositories)(nil)
