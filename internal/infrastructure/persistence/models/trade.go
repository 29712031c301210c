package models

import (
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func lineColumns(lines []trade.ItemLine) []ItemLineColumns {
	out := make([]ItemLineColumns, len(lines))
	for i, l := range lines {
		out[i] = ItemLineColumns{
			Idx:      i + 1,
			ItemCode: l.ItemCode,
			ItemName: l.ItemName,
			Qty:      l.Qty,
			Rate:     l.Rate,
			Weight:   l.Weight,
		}
	}
	return out
}

// ToDomain converts the columns to a domain item line
func (c ItemLineColumns) ToDomain() trade.ItemLine {
	return trade.ItemLine{
		ItemCode: c.ItemCode,
		ItemName: c.ItemName,
		Qty:      c.Qty,
		Rate:     c.Rate,
		Weight:   c.Weight,
	}
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
// Derived amounts are stored for reporting and recomputed on every load.
type SalesOrderModel struct {
	VoucherModel
	Customer            string          `gorm:"type:varchar(140);not null;index"`
	FromAvailableStock  string          `gorm:"type:varchar(40);not null;default:''"`
	FromPurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	EditCommission      bool            `gorm:"not null"`
	Commission          int64           `gorm:"not null;default:0"`
	Margin              int64           `gorm:"not null;default:0"`
	Discount            int64           `gorm:"not null;default:0"`
	ItemsCost           int64           `gorm:"not null;default:0"`
	ServiceAmount       int64           `gorm:"not null;default:0"`
	TotalAmount         int64           `gorm:"not null;default:0"`
	TotalQuantity       int64           `gorm:"not null;default:0"`
	TotalWeight         float64         `gorm:"not null;default:0"`
	PaidAmount          int64           `gorm:"not null;default:0"`
	PendingAmount       int64           `gorm:"not null;default:0"`
	PerPaid             decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	PaymentStatus       string          `gorm:"type:varchar(20);not null;default:''"`
	DeliveryStatus      string          `gorm:"type:varchar(20);not null;default:''"`
	Status              string          `gorm:"type:varchar(20);not null;default:'Draft'"`
	// Associations
	Items      []SalesOrderItemModel      `gorm:"foreignKey:OrderID;references:ID"`
	ChildItems []SalesOrderChildItemModel `gorm:"foreignKey:OrderID;references:ID"`
	Services   []SalesOrderServiceModel   `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseVoucher:         m.VoucherModel.ToDomain(),
		Customer:            m.Customer,
		FromAvailableStock:  inventory.StockType(m.FromAvailableStock),
		FromPurchaseOrderID: m.FromPurchaseOrderID,
		EditCommission:      m.EditCommission,
		Commission:          m.Commission,
		Margin:              m.Margin,
		Discount:            m.Discount,
		ItemsCost:           m.ItemsCost,
		ServiceAmount:       m.ServiceAmount,
		TotalAmount:         m.TotalAmount,
		TotalQuantity:       m.TotalQuantity,
		TotalWeight:         m.TotalWeight,
		PaidAmount:          m.PaidAmount,
		PendingAmount:       m.PendingAmount,
		PerPaid:             m.PerPaid,
		PaymentStatus:       trade.PaymentStatus(m.PaymentStatus),
		DeliveryStatus:      trade.DeliveryStatus(m.DeliveryStatus),
		Status:              trade.SalesOrderStatus(m.Status),
		Items:               make([]trade.ItemLine, len(m.Items)),
		ChildItems:          make([]trade.ChildItem, len(m.ChildItems)),
		Services:            make([]trade.Service, len(m.Services)),
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	for i, child := range m.ChildItems {
		order.ChildItems[i] = trade.ChildItem{
			ParentItemCode: child.ParentItemCode,
			ItemCode:       child.ItemCode,
			ItemName:       child.ItemName,
			Qty:            child.Qty,
		}
	}
	for i, s := range m.Services {
		order.Services[i] = trade.Service{Type: trade.ServiceType(s.Type), Rate: s.Rate}
	}
	return order
}

// FromDomain populates the persistence model from a domain SalesOrder entity.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.FromDomainVoucher(o.BaseVoucher)
	m.Customer = o.Customer
	m.FromAvailableStock = string(o.FromAvailableStock)
	m.FromPurchaseOrderID = o.FromPurchaseOrderID
	m.EditCommission = o.EditCommission
	m.Commission = o.Commission
	m.Margin = o.Margin
	m.Discount = o.Discount
	m.ItemsCost = o.ItemsCost
	m.ServiceAmount = o.ServiceAmount
	m.TotalAmount = o.TotalAmount
	m.TotalQuantity = o.TotalQuantity
	m.TotalWeight = o.TotalWeight
	m.PaidAmount = o.PaidAmount
	m.PendingAmount = o.PendingAmount
	m.PerPaid = o.PerPaid
	m.PaymentStatus = string(o.PaymentStatus)
	m.DeliveryStatus = string(o.DeliveryStatus)
	m.Status = string(o.Status)

	m.Items = make([]SalesOrderItemModel, 0, len(o.Items))
	for _, c := range lineColumns(o.Items) {
		m.Items = append(m.Items, SalesOrderItemModel{OrderID: o.ID, ItemLineColumns: c})
	}
	m.ChildItems = make([]SalesOrderChildItemModel, len(o.ChildItems))
	for i, c := range o.ChildItems {
		m.ChildItems[i] = SalesOrderChildItemModel{
			OrderID:        o.ID,
			Idx:            i + 1,
			ParentItemCode: c.ParentItemCode,
			ItemCode:       c.ItemCode,
			ItemName:       c.ItemName,
			Qty:            c.Qty,
		}
	}
	m.Services = make([]SalesOrderServiceModel, len(o.Services))
	for i, s := range o.Services {
		m.Services[i] = SalesOrderServiceModel{OrderID: o.ID, Idx: i + 1, Type: string(s.Type), Rate: s.Rate}
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder entity.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesOrderItemModel is one item line of a Sales Order
type SalesOrderItemModel struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemLineColumns
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// SalesOrderChildItemModel is one derived child line of a combination
type SalesOrderChildItemModel struct {
	OrderID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Idx            int       `gorm:"primaryKey;autoIncrement:false"`
	ParentItemCode string    `gorm:"type:varchar(140);not null"`
	ItemCode       string    `gorm:"type:varchar(140);not null"`
	ItemName       string    `gorm:"type:varchar(140);not null;default:''"`
	Qty            int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderChildItemModel) TableName() string {
	return "sales_order_child_items"
}

// SalesOrderServiceModel is one service line of a Sales Order
type SalesOrderServiceModel struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Idx     int       `gorm:"primaryKey;autoIncrement:false"`
	Type    string    `gorm:"type:varchar(40);not null"`
	Rate    int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderServiceModel) TableName() string {
	return "sales_order_services"
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	VoucherModel
	Name            string  `gorm:"type:varchar(140);not null;default:''"`
	DeliveryCost    int64   `gorm:"not null;default:0"`
	SalesOrderCost  int64   `gorm:"not null;default:0"`
	ItemsToSellCost int64   `gorm:"not null;default:0"`
	TotalAmount     int64   `gorm:"not null;default:0"`
	TotalWeight     float64 `gorm:"not null;default:0"`
	Status          string  `gorm:"type:varchar(20);not null;default:'Draft'"`
	// Associations
	SalesOrders []PurchaseOrderSalesOrderModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	ItemsToSell []PurchaseOrderItemModel       `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseVoucher:     m.VoucherModel.ToDomain(),
		Name:            m.Name,
		DeliveryCost:    m.DeliveryCost,
		SalesOrderCost:  m.SalesOrderCost,
		ItemsToSellCost: m.ItemsToSellCost,
		TotalAmount:     m.TotalAmount,
		TotalWeight:     m.TotalWeight,
		Status:          trade.PurchaseOrderStatus(m.Status),
		SalesOrders:     make([]trade.PurchaseOrderSalesOrder, len(m.SalesOrders)),
		ItemsToSell:     make([]trade.ItemLine, len(m.ItemsToSell)),
	}
	for i, s := range m.SalesOrders {
		order.SalesOrders[i] = trade.PurchaseOrderSalesOrder{
			SalesOrderID: s.SalesOrderID,
			Customer:     s.Customer,
			TotalAmount:  s.TotalAmount,
		}
	}
	for i, item := range m.ItemsToSell {
		order.ItemsToSell[i] = item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainVoucher(o.BaseVoucher)
	m.Name = o.Name
	m.DeliveryCost = o.DeliveryCost
	m.SalesOrderCost = o.SalesOrderCost
	m.ItemsToSellCost = o.ItemsToSellCost
	m.TotalAmount = o.TotalAmount
	m.TotalWeight = o.TotalWeight
	m.Status = string(o.Status)

	m.SalesOrders = make([]PurchaseOrderSalesOrderModel, len(o.SalesOrders))
	for i, s := range o.SalesOrders {
		m.SalesOrders[i] = PurchaseOrderSalesOrderModel{
			PurchaseOrderID: o.ID,
			Idx:             i + 1,
			SalesOrderID:    s.SalesOrderID,
			Customer:        s.Customer,
			TotalAmount:     s.TotalAmount,
		}
	}
	m.ItemsToSell = make([]PurchaseOrderItemModel, 0, len(o.ItemsToSell))
	for _, c := range lineColumns(o.ItemsToSell) {
		m.ItemsToSell = append(m.ItemsToSell, PurchaseOrderItemModel{PurchaseOrderID: o.ID, ItemLineColumns: c})
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderSalesOrderModel links a Sales Order to a Purchase Order
type PurchaseOrderSalesOrderModel struct {
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Idx             int       `gorm:"primaryKey;autoIncrement:false"`
	SalesOrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Customer        string    `gorm:"type:varchar(140);not null;default:''"`
	TotalAmount     int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderSalesOrderModel) TableName() string {
	return "purchase_order_sales_orders"
}

// PurchaseOrderItemModel is one item to sell of a Purchase Order
type PurchaseOrderItemModel struct {
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemLineColumns
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// SalesReturnModel is the persistence model for the SalesReturn aggregate root.
type SalesReturnModel struct {
	VoucherModel
	SalesOrderID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromPurchaseReturnID *uuid.UUID `gorm:"type:uuid;index"`
	SystemGenerated      bool       `gorm:"not null"`
	ReturnedPaidAmount   int64      `gorm:"not null;default:0"`
	// Associations
	Items []SalesReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesReturnModel) TableName() string {
	return "sales_returns"
}

// ToDomain converts the persistence model to a domain SalesReturn entity.
func (m *SalesReturnModel) ToDomain() *trade.SalesReturn {
	ret := &trade.SalesReturn{
		BaseVoucher:          m.VoucherModel.ToDomain(),
		SalesOrderID:         m.SalesOrderID,
		FromPurchaseReturnID: m.FromPurchaseReturnID,
		SystemGenerated:      m.SystemGenerated,
		ReturnedPaidAmount:   m.ReturnedPaidAmount,
		Items:                make([]trade.ItemLine, len(m.Items)),
	}
	for i, item := range m.Items {
		ret.Items[i] = item.ToDomain()
	}
	return ret
}

// FromDomain populates the persistence model from a domain SalesReturn entity.
func (m *SalesReturnModel) FromDomain(r *trade.SalesReturn) {
	m.FromDomainVoucher(r.BaseVoucher)
	m.SalesOrderID = r.SalesOrderID
	m.FromPurchaseReturnID = r.FromPurchaseReturnID
	m.SystemGenerated = r.SystemGenerated
	m.ReturnedPaidAmount = r.ReturnedPaidAmount
	m.Items = make([]SalesReturnItemModel, 0, len(r.Items))
	for _, c := range lineColumns(r.Items) {
		m.Items = append(m.Items, SalesReturnItemModel{ReturnID: r.ID, ItemLineColumns: c})
	}
}

// SalesReturnModelFromDomain creates a new persistence model from a domain SalesReturn entity.
func SalesReturnModelFromDomain(r *trade.SalesReturn) *SalesReturnModel {
	m := &SalesReturnModel{}
	m.FromDomain(r)
	return m
}

// SalesReturnItemModel is one returned item line
type SalesReturnItemModel struct {
	ReturnID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemLineColumns
}

// TableName returns the table name for GORM
func (SalesReturnItemModel) TableName() string {
	return "sales_return_items"
}

// PurchaseReturnModel is the persistence model for the PurchaseReturn aggregate root.
type PurchaseReturnModel struct {
	VoucherModel
	PurchaseOrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ReturnedPaidAmount int64     `gorm:"not null;default:0"`
	// Associations
	Items []PurchaseReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReturnModel) TableName() string {
	return "purchase_returns"
}

// ToDomain converts the persistence model to a domain PurchaseReturn entity.
func (m *PurchaseReturnModel) ToDomain() *trade.PurchaseReturn {
	ret := &trade.PurchaseReturn{
		BaseVoucher:        m.VoucherModel.ToDomain(),
		PurchaseOrderID:    m.PurchaseOrderID,
		ReturnedPaidAmount: m.ReturnedPaidAmount,
		Items:              make([]trade.ItemLine, len(m.Items)),
	}
	for i, item := range m.Items {
		ret.Items[i] = item.ToDomain()
	}
	return ret
}

// FromDomain populates the persistence model from a domain PurchaseReturn entity.
func (m *PurchaseReturnModel) FromDomain(r *trade.PurchaseReturn) {
	m.FromDomainVoucher(r.BaseVoucher)
	m.PurchaseOrderID = r.PurchaseOrderID
	m.ReturnedPaidAmount = r.ReturnedPaidAmount
	m.Items = make([]PurchaseReturnItemModel, 0, len(r.Items))
	for _, c := range lineColumns(r.Items) {
		m.Items = append(m.Items, PurchaseReturnItemModel{ReturnID: r.ID, ItemLineColumns: c})
	}
}

// PurchaseReturnModelFromDomain creates a new persistence model from a domain PurchaseReturn entity.
func PurchaseReturnModelFromDomain(r *trade.PurchaseReturn) *PurchaseReturnModel {
	m := &PurchaseReturnModel{}
	m.FromDomain(r)
	return m
}

// PurchaseReturnItemModel is one returned item line
type PurchaseReturnItemModel struct {
	ReturnID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemLineColumns
}

// TableName returns the table name for GORM
func (PurchaseReturnItemModel) TableName() string {
	return "purchase_return_items"
}
