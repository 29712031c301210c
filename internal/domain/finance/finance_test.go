package finance

import (
	"testing"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenChart(t *testing.T) {
	accounts := FlattenChart(DefaultChart)
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}

	t.Run("groups are flagged", func(t *testing.T) {
		assert.True(t, byName["Assets"].IsGroup)
		assert.True(t, byName["Service"].IsGroup)
		assert.False(t, byName["Cash"].IsGroup)
	})

	t.Run("parents are recorded", func(t *testing.T) {
		assert.Equal(t, "Income", byName["Service"].ParentName)
		assert.Equal(t, "Service", byName["Installation"].ParentName)
		assert.Equal(t, "", byName["Liabilities"].ParentName)
	})

	t.Run("every role points at a leaf", func(t *testing.T) {
		for role, name := range DefaultAccountSettings() {
			a, ok := byName[name]
			require.True(t, ok, "role %s", role)
			assert.NoError(t, a.CanPost())
		}
	})
}

func TestAccount_CanPost(t *testing.T) {
	err := (&Account{Name: "Assets", IsGroup: true}).CanPost()
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err))
	assert.Equal(t, "Account Assets is a group account", err.Error())
}

func TestAccountSettings(t *testing.T) {
	s := DefaultAccountSettings()

	t.Run("money account", func(t *testing.T) {
		cash, err := s.MoneyAccount(true)
		require.NoError(t, err)
		assert.Equal(t, "Cash", cash)
		bank, err := s.MoneyAccount(false)
		require.NoError(t, err)
		assert.Equal(t, "Bank", bank)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := s.Account("rent")
		require.Error(t, err)
		assert.Equal(t, `Finance Settings has no field "rent_account"`, err.Error())
	})

	t.Run("overrides do not mutate the original", func(t *testing.T) {
		o := s.WithOverrides(map[string]string{"bank": "Savings", "cash": ""})
		assert.Equal(t, "Savings", o[RoleBank])
		assert.Equal(t, "Cash", o[RoleCash])
		assert.Equal(t, "Bank", s[RoleBank])
	})
}

func TestNewGLEntry(t *testing.T) {
	ref := shared.NewVoucherRef(shared.VoucherPayment, uuid.New())

	t.Run("creates submitted entry", func(t *testing.T) {
		e, err := NewGLEntry(ref, "Cash", 100, 0)
		require.NoError(t, err)
		assert.Equal(t, shared.DocStatusSubmitted, e.DocStatus)
		assert.Equal(t, int64(100), e.Balance())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := NewGLEntry(ref, "Cash", -1, 0)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects missing voucher", func(t *testing.T) {
		_, err := NewGLEntry(shared.VoucherRef{}, "Cash", 1, 0)
		assert.Error(t, err)
	})
}

func TestPosting(t *testing.T) {
	ref := shared.NewVoucherRef(shared.VoucherReceipt, uuid.New())

	t.Run("negative amounts flip side", func(t *testing.T) {
		p := NewPosting(ref).Debit("Prepaid Sales", 100).Credit("Inventory", 110).Credit("Sales", -10)
		require.Len(t, p.Lines, 3)
		assert.Equal(t, int64(10), p.Lines[2].Debit)
		assert.NoError(t, p.Validate())
	})

	t.Run("zero amounts are skipped", func(t *testing.T) {
		p := NewPosting(ref).Debit("Cash", 0).Credit("Sales", 0)
		assert.True(t, p.IsEmpty())
	})

	t.Run("unbalanced posting is rejected", func(t *testing.T) {
		p := NewPosting(ref).Debit("Cash", 100).Credit("Sales", 90)
		err := p.Validate()
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestPostingBuilders(t *testing.T) {
	s := DefaultAccountSettings()
	ref := shared.NewVoucherRef(shared.VoucherPayment, uuid.New())

	tests := []struct {
		name  string
		build func() (*Posting, error)
		lines int
	}{
		{"sales payment", func() (*Posting, error) { return SalesPaymentPosting(s, ref, 500, true) }, 2},
		{"purchase payment with delivery", func() (*Posting, error) { return PurchasePaymentPosting(s, ref, 1000, 100, false) }, 4},
		{"purchase payment without delivery", func() (*Posting, error) { return PurchasePaymentPosting(s, ref, 1000, 0, false) }, 2},
		{"sales receipt", func() (*Posting, error) {
			return SalesReceiptPosting(s, ref, SalesAmounts{
				TotalAmount: 19550, ItemsCost: 17950, Margin: 1800, Discount: 1000, Delivery: 200, Installation: 600,
			})
		}, 5},
		{"sales receipt with discount above margin", func() (*Posting, error) {
			return SalesReceiptPosting(s, ref, SalesAmounts{TotalAmount: 900, ItemsCost: 1000, Margin: 0, Discount: 100})
		}, 3},
		{"purchase receipt", func() (*Posting, error) { return PurchaseReceiptPosting(s, ref, 1000) }, 2},
		{"returned inventory", func() (*Posting, error) { return ReturnedInventoryPosting(s, ref, 300) }, 2},
		{"customer refund", func() (*Posting, error) { return CustomerRefundPosting(s, ref, 300, false) }, 2},
		{"supplier refund", func() (*Posting, error) { return SupplierRefundPosting(s, ref, 300, true, true) }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			require.NoError(t, err)
			assert.Len(t, p.Lines, tt.lines)
			assert.NoError(t, p.Validate())
		})
	}
}

func TestNewPayment(t *testing.T) {
	t.Run("valid payment", func(t *testing.T) {
		p, err := NewPayment(shared.OrderKindSales, uuid.New(), 500, true)
		require.NoError(t, err)
		assert.True(t, p.IsDraft())
		assert.Equal(t, shared.VoucherSalesOrder, p.Order.Type)
		assert.Equal(t, shared.VoucherPayment, p.Ref().Type)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := NewPayment(shared.OrderKindPurchase, uuid.New(), 0, false)
		require.Error(t, err)
		assert.Equal(t, "Amount should be more than zero", err.Error())
	})
}
