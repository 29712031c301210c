package models

import (
	"time"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for a chart of accounts node
type AccountModel struct {
	Name       string `gorm:"type:varchar(140);primaryKey"`
	ParentName string `gorm:"type:varchar(140);not null;default:'';index"`
	IsGroup    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *finance.Account {
	return &finance.Account{
		Name:       m.Name,
		ParentName: m.ParentName,
		IsGroup:    m.IsGroup,
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *finance.Account) *AccountModel {
	return &AccountModel{
		Name:       a.Name,
		ParentName: a.ParentName,
		IsGroup:    a.IsGroup,
	}
}

// GLEntryModel is the persistence model for one ledger row
type GLEntryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Account     string    `gorm:"type:varchar(140);not null;index"`
	Debit       int64     `gorm:"not null;default:0"`
	Credit      int64     `gorm:"not null;default:0"`
	VoucherType string    `gorm:"type:varchar(40);not null;index:idx_gl_entries_voucher,priority:1"`
	VoucherID   uuid.UUID `gorm:"type:uuid;not null;index:idx_gl_entries_voucher,priority:2"`
	DocStatus   int       `gorm:"column:docstatus;type:smallint;not null;default:1;index"`
	PostedAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (GLEntryModel) TableName() string {
	return "gl_entries"
}

// ToDomain converts the persistence model to a domain GLEntry
func (m *GLEntryModel) ToDomain() *finance.GLEntry {
	return &finance.GLEntry{
		ID:        m.ID,
		Account:   m.Account,
		Debit:     m.Debit,
		Credit:    m.Credit,
		Voucher:   voucherRef(m.VoucherType, m.VoucherID),
		DocStatus: shared.DocStatus(m.DocStatus),
		PostedAt:  m.PostedAt,
	}
}

// GLEntryModelFromDomain creates a new persistence model from a domain GLEntry
func GLEntryModelFromDomain(e *finance.GLEntry) *GLEntryModel {
	return &GLEntryModel{
		ID:          e.ID,
		Account:     e.Account,
		Debit:       e.Debit,
		Credit:      e.Credit,
		VoucherType: string(e.Voucher.Type),
		VoucherID:   e.Voucher.ID,
		DocStatus:   int(e.DocStatus),
		PostedAt:    e.PostedAt,
	}
}

// PaymentModel is the persistence model for the Payment voucher
type PaymentModel struct {
	VoucherModel
	OrderType    string    `gorm:"type:varchar(40);not null;index:idx_payments_order,priority:1"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index:idx_payments_order,priority:2"`
	Amount       int64     `gorm:"not null"`
	PaidWithCash bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseVoucher:  m.VoucherModel.ToDomain(),
		Order:        voucherRef(m.OrderType, m.OrderID),
		Amount:       m.Amount,
		PaidWithCash: m.PaidWithCash,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		OrderType:    string(p.Order.Type),
		OrderID:      p.Order.ID,
		Amount:       p.Amount,
		PaidWithCash: p.PaidWithCash,
	}
	m.FromDomainVoucher(p.BaseVoucher)
	return m
}
