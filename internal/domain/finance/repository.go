package finance

import (
	"context"
	"time"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BalanceFilter bounds a balance query by posting time. Zero values are open bounds.
type BalanceFilter struct {
	From time.Time
	To   time.Time
}

// AccountBalance is the balance of one account
type AccountBalance struct {
	Account string
	Balance int64
}

// AccountRepository defines the interface for chart of accounts persistence
type AccountRepository interface {
	// FindByName finds an account by its name, returns ErrNotFound if missing
	FindByName(ctx context.Context, name string) (*Account, error)

	// FindAll returns every account of the chart
	FindAll(ctx context.Context) ([]Account, error)

	// Save inserts an account or updates its parent and group flag
	Save(ctx context.Context, account *Account) error
}

// GLEntryRepository defines the interface for ledger row persistence.
// Every aggregate considers Submitted rows only.
type GLEntryRepository interface {
	// Create inserts entries
	Create(ctx context.Context, entries ...*GLEntry) error

	// CancelFor marks all Submitted rows of voucher Cancelled and returns how many changed
	CancelFor(ctx context.Context, voucher shared.VoucherRef) (int64, error)

	// FindByVoucher returns all rows of voucher, including cancelled ones
	FindByVoucher(ctx context.Context, voucher shared.VoucherRef) ([]GLEntry, error)

	// Balance returns debit minus credit of account
	Balance(ctx context.Context, account string, filter BalanceFilter) (int64, error)

	// Balances returns debit minus credit per account
	Balances(ctx context.Context, filter BalanceFilter) ([]AccountBalance, error)

	// SumForVouchers returns debit minus credit over accounts for the given vouchers
	SumForVouchers(ctx context.Context, accounts []string, vouchers []shared.VoucherRef) (int64, error)

	// TrialBalance returns total debit minus total credit
	TrialBalance(ctx context.Context) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder returns payments of an order in creation order
	FindByOrder(ctx context.Context, order shared.VoucherRef) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error
}
