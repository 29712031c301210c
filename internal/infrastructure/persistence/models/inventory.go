package models

import (
	"time"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockEntryModel is the persistence model for one voucher-owned stock batch
type StockEntryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	VoucherType string    `gorm:"type:varchar(40);not null;index:idx_stock_entries_voucher,priority:1"`
	VoucherID   uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_entries_voucher,priority:2"`
	StockType   string    `gorm:"type:varchar(40);not null;index"`
	DocStatus   int       `gorm:"column:docstatus;type:smallint;not null;default:1;index"`
	PostedAt    time.Time `gorm:"not null"`
	// Associations
	Items []StockEntryItemModel `gorm:"foreignKey:StockEntryID;references:ID"`
}

// TableName returns the table name for GORM
func (StockEntryModel) TableName() string {
	return "stock_entries"
}

// ToDomain converts the persistence model to a domain StockEntry
func (m *StockEntryModel) ToDomain() *inventory.StockEntry {
	entry := &inventory.StockEntry{
		ID:        m.ID,
		Voucher:   voucherRef(m.VoucherType, m.VoucherID),
		StockType: inventory.StockType(m.StockType),
		DocStatus: shared.DocStatus(m.DocStatus),
		PostedAt:  m.PostedAt,
		Items:     make([]inventory.ItemQty, len(m.Items)),
	}
	for i, it := range m.Items {
		entry.Items[i] = inventory.ItemQty{ItemCode: it.ItemCode, Qty: it.Qty}
	}
	return entry
}

// StockEntryModelFromDomain creates a new persistence model from a domain StockEntry
func StockEntryModelFromDomain(e *inventory.StockEntry) *StockEntryModel {
	m := &StockEntryModel{
		ID:          e.ID,
		VoucherType: string(e.Voucher.Type),
		VoucherID:   e.Voucher.ID,
		StockType:   string(e.StockType),
		DocStatus:   int(e.DocStatus),
		PostedAt:    e.PostedAt,
		Items:       make([]StockEntryItemModel, len(e.Items)),
	}
	for i, it := range e.Items {
		m.Items[i] = StockEntryItemModel{
			StockEntryID: e.ID,
			Idx:          i + 1,
			ItemCode:     it.ItemCode,
			Qty:          it.Qty,
		}
	}
	return m
}

// StockEntryItemModel is one signed quantity of a stock batch
type StockEntryItemModel struct {
	StockEntryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Idx          int       `gorm:"primaryKey;autoIncrement:false"`
	ItemCode     string    `gorm:"type:varchar(140);not null;index"`
	Qty          int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockEntryItemModel) TableName() string {
	return "stock_entry_items"
}

// ReceiptModel is the persistence model for the Receipt voucher
type ReceiptModel struct {
	VoucherModel
	OrderType string    `gorm:"type:varchar(40);not null;index:idx_receipts_order,priority:1"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index:idx_receipts_order,priority:2"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain() *inventory.Receipt {
	return &inventory.Receipt{
		BaseVoucher: m.VoucherModel.ToDomain(),
		Order:       voucherRef(m.OrderType, m.OrderID),
	}
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt
func ReceiptModelFromDomain(r *inventory.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		OrderType: string(r.Order.Type),
		OrderID:   r.Order.ID,
	}
	m.FromDomainVoucher(r.BaseVoucher)
	return m
}

// CheckoutModel is the persistence model for the Checkout voucher
type CheckoutModel struct {
	VoucherModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (CheckoutModel) TableName() string {
	return "checkouts"
}

// ToDomain converts the persistence model to a domain Checkout
func (m *CheckoutModel) ToDomain() *inventory.Checkout {
	return &inventory.Checkout{
		BaseVoucher:     m.VoucherModel.ToDomain(),
		PurchaseOrderID: m.PurchaseOrderID,
	}
}

// CheckoutModelFromDomain creates a new persistence model from a domain Checkout
func CheckoutModelFromDomain(c *inventory.Checkout) *CheckoutModel {
	m := &CheckoutModel{PurchaseOrderID: c.PurchaseOrderID}
	m.FromDomainVoucher(c.BaseVoucher)
	return m
}
