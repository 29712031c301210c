package trade

import (
	"time"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// ItemInput is one requested item line
type ItemInput struct {
	ItemCode string `json:"item_code" binding:"required,max=140"`
	Qty      int64  `json:"qty" binding:"gte=0"`
}

// ServiceInput is one requested service line
type ServiceInput struct {
	Type string `json:"type" binding:"required,oneof='Delivery to Apartment' 'Delivery to Entrance' Installation"`
	Rate int64  `json:"rate" binding:"gte=0"`
}

// SalesOrderRequest creates a Sales Order or replaces the editable fields of a draft
type SalesOrderRequest struct {
	Customer            string         `json:"customer" binding:"required,max=140"`
	Items               []ItemInput    `json:"items" binding:"dive"`
	Services            []ServiceInput `json:"services" binding:"dive"`
	Discount            int64          `json:"discount" binding:"gte=0"`
	Commission          *int64         `json:"commission" binding:"omitempty,gte=0"`
	FromAvailableStock  string         `json:"from_available_stock" binding:"omitempty,oneof='Available Actual' 'Available Purchased'"`
	FromPurchaseOrderID *uuid.UUID     `json:"from_purchase_order_id"`
}

// AddPaymentRequest records money received for an order
type AddPaymentRequest struct {
	Amount       int64 `json:"amount" binding:"required,gt=0"`
	PaidWithCash bool  `json:"paid_with_cash"`
}

// SplitCombinationsRequest names the combination lines to split
type SplitCombinationsRequest struct {
	Combinations []string `json:"combinations" binding:"required,min=1"`
}

// PurchaseOrderRequest creates a Purchase Order or replaces the editable fields of a draft
type PurchaseOrderRequest struct {
	Name          string      `json:"name" binding:"max=140"`
	SalesOrderIDs []uuid.UUID `json:"sales_order_ids"`
	ItemsToSell   []ItemInput `json:"items_to_sell" binding:"dive"`
	DeliveryCost  int64       `json:"delivery_cost" binding:"gte=0"`
}

// SubmitPurchaseOrderRequest says how the supplier is paid
type SubmitPurchaseOrderRequest struct {
	PaidWithCash bool `json:"paid_with_cash"`
}

// ReturnItemsRequest adds items to a draft return
type ReturnItemsRequest struct {
	Items []ItemInput `json:"items" binding:"required,min=1,dive"`
}

func toItemLines(in []ItemInput) []trade.ItemLine {
	out := make([]trade.ItemLine, 0, len(in))
	for _, it := range in {
		out = append(out, trade.ItemLine{ItemCode: it.ItemCode, Qty: it.Qty})
	}
	return out
}

func toServices(in []ServiceInput) []trade.Service {
	out := make([]trade.Service, 0, len(in))
	for _, s := range in {
		out = append(out, trade.Service{Type: trade.ServiceType(s.Type), Rate: s.Rate})
	}
	return out
}

// ==================== Responses ====================

// ItemLineResponse is one item line of a voucher
type ItemLineResponse struct {
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      int64   `json:"qty"`
	Rate     int64   `json:"rate"`
	Weight   float64 `json:"weight"`
	Amount   int64   `json:"amount"`
}

// ChildItemResponse is one child line of a combination
type ChildItemResponse struct {
	ParentItemCode string `json:"parent_item_code"`
	ItemCode       string `json:"item_code"`
	ItemName       string `json:"item_name"`
	Qty            int64  `json:"qty"`
}

// ServiceResponse is one service line
type ServiceResponse struct {
	Type string `json:"type"`
	Rate int64  `json:"rate"`
}

// SalesOrderResponse represents a Sales Order in API responses
type SalesOrderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Customer            string              `json:"customer"`
	DocStatus           string              `json:"docstatus"`
	Status              string              `json:"status"`
	PaymentStatus       string              `json:"payment_status"`
	DeliveryStatus      string              `json:"delivery_status"`
	Items               []ItemLineResponse  `json:"items"`
	ChildItems          []ChildItemResponse `json:"child_items"`
	Services            []ServiceResponse   `json:"services"`
	FromAvailableStock  string              `json:"from_available_stock,omitempty"`
	FromPurchaseOrderID *uuid.UUID          `json:"from_purchase_order_id,omitempty"`
	EditCommission      bool                `json:"edit_commission"`
	Commission          int64               `json:"commission"`
	Margin              int64               `json:"margin"`
	Discount            int64               `json:"discount"`
	ItemsCost           int64               `json:"items_cost"`
	ServiceAmount       int64               `json:"service_amount"`
	TotalAmount         int64               `json:"total_amount"`
	TotalQuantity       int64               `json:"total_quantity"`
	TotalWeight         float64             `json:"total_weight"`
	PaidAmount          int64               `json:"paid_amount"`
	PendingAmount       int64               `json:"pending_amount"`
	PerPaid             decimal.Decimal     `json:"per_paid"`
	Version             int                 `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// PurchaseOrderSalesOrderResponse is one linked Sales Order
type PurchaseOrderSalesOrderResponse struct {
	SalesOrderID uuid.UUID `json:"sales_order_id"`
	Customer     string    `json:"customer"`
	TotalAmount  int64     `json:"total_amount"`
}

// PurchaseOrderResponse represents a Purchase Order in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID                         `json:"id"`
	Name            string                            `json:"name"`
	DocStatus       string                            `json:"docstatus"`
	Status          string                            `json:"status"`
	SalesOrders     []PurchaseOrderSalesOrderResponse `json:"sales_orders"`
	ItemsToSell     []ItemLineResponse                `json:"items_to_sell"`
	DeliveryCost    int64                             `json:"delivery_cost"`
	SalesOrderCost  int64                             `json:"sales_orders_cost"`
	ItemsToSellCost int64                             `json:"items_to_sell_cost"`
	TotalAmount     int64                             `json:"total_amount"`
	TotalWeight     float64                           `json:"total_weight"`
	Version         int                               `json:"version"`
	CreatedAt       time.Time                         `json:"created_at"`
	UpdatedAt       time.Time                         `json:"updated_at"`
}

// SalesReturnResponse represents a Sales Return in API responses
type SalesReturnResponse struct {
	ID                   uuid.UUID          `json:"id"`
	SalesOrderID         uuid.UUID          `json:"voucher_no"`
	FromPurchaseReturnID *uuid.UUID         `json:"from_purchase_return,omitempty"`
	SystemGenerated      bool               `json:"system_generated"`
	DocStatus            string             `json:"docstatus"`
	Items                []ItemLineResponse `json:"items"`
	TotalAmount          int64              `json:"total_amount"`
	ReturnedPaidAmount   int64              `json:"returned_paid_amount"`
	CreatedAt            time.Time          `json:"created_at"`
}

// PurchaseReturnResponse represents a Purchase Return in API responses
type PurchaseReturnResponse struct {
	ID                 uuid.UUID          `json:"id"`
	PurchaseOrderID    uuid.UUID          `json:"voucher_no"`
	DocStatus          string             `json:"docstatus"`
	Items              []ItemLineResponse `json:"items"`
	ReturnedPaidAmount int64              `json:"returned_paid_amount"`
	CreatedAt          time.Time          `json:"created_at"`
}

// PaymentResponse represents a Payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID `json:"id"`
	VoucherType  string    `json:"voucher_type"`
	VoucherNo    uuid.UUID `json:"voucher_no"`
	Amount       int64     `json:"amount"`
	PaidWithCash bool      `json:"paid_with_cash"`
	DocStatus    string    `json:"docstatus"`
}

// ReceiptResponse represents a Receipt in API responses
type ReceiptResponse struct {
	ID          uuid.UUID `json:"id"`
	VoucherType string    `json:"voucher_type"`
	VoucherNo   uuid.UUID `json:"voucher_no"`
	DocStatus   string    `json:"docstatus"`
}

func toItemLineResponses(lines []trade.ItemLine) []ItemLineResponse {
	out := make([]ItemLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ItemLineResponse{
			ItemCode: l.ItemCode,
			ItemName: l.ItemName,
			Qty:      l.Qty,
			Rate:     l.Rate,
			Weight:   l.Weight,
			Amount:   l.Amount(),
		})
	}
	return out
}

// ToSalesOrderResponse converts a domain SalesOrder to a response DTO
func ToSalesOrderResponse(so *trade.SalesOrder) SalesOrderResponse {
	children := make([]ChildItemResponse, 0, len(so.ChildItems))
	for _, c := range so.ChildItems {
		children = append(children, ChildItemResponse{
			ParentItemCode: c.ParentItemCode,
			ItemCode:       c.ItemCode,
			ItemName:       c.ItemName,
			Qty:            c.Qty,
		})
	}
	services := make([]ServiceResponse, 0, len(so.Services))
	for _, s := range so.Services {
		services = append(services, ServiceResponse{Type: string(s.Type), Rate: s.Rate})
	}
	return SalesOrderResponse{
		ID:                  so.ID,
		Customer:            so.Customer,
		DocStatus:           so.DocStatus.String(),
		Status:              string(so.Status),
		PaymentStatus:       string(so.PaymentStatus),
		DeliveryStatus:      string(so.DeliveryStatus),
		Items:               toItemLineResponses(so.Items),
		ChildItems:          children,
		Services:            services,
		FromAvailableStock:  string(so.FromAvailableStock),
		FromPurchaseOrderID: so.FromPurchaseOrderID,
		EditCommission:      so.EditCommission,
		Commission:          so.Commission,
		Margin:              so.Margin,
		Discount:            so.Discount,
		ItemsCost:           so.ItemsCost,
		ServiceAmount:       so.ServiceAmount,
		TotalAmount:         so.TotalAmount,
		TotalQuantity:       so.TotalQuantity,
		TotalWeight:         so.TotalWeight,
		PaidAmount:          so.PaidAmount,
		PendingAmount:       so.PendingAmount,
		PerPaid:             so.PerPaid,
		Version:             so.Version,
		CreatedAt:           so.CreatedAt,
		UpdatedAt:           so.UpdatedAt,
	}
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response DTO
func ToPurchaseOrderResponse(po *trade.PurchaseOrder) PurchaseOrderResponse {
	links := make([]PurchaseOrderSalesOrderResponse, 0, len(po.SalesOrders))
	for _, l := range po.SalesOrders {
		links = append(links, PurchaseOrderSalesOrderResponse{
			SalesOrderID: l.SalesOrderID,
			Customer:     l.Customer,
			TotalAmount:  l.TotalAmount,
		})
	}
	return PurchaseOrderResponse{
		ID:              po.ID,
		Name:            po.Name,
		DocStatus:       po.DocStatus.String(),
		Status:          string(po.Status),
		SalesOrders:     links,
		ItemsToSell:     toItemLineResponses(po.ItemsToSell),
		DeliveryCost:    po.DeliveryCost,
		SalesOrderCost:  po.SalesOrderCost,
		ItemsToSellCost: po.ItemsToSellCost,
		TotalAmount:     po.TotalAmount,
		TotalWeight:     po.TotalWeight,
		Version:         po.Version,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
	}
}

// ToSalesReturnResponse converts a domain SalesReturn to a response DTO
func ToSalesReturnResponse(r *trade.SalesReturn) SalesReturnResponse {
	return SalesReturnResponse{
		ID:                   r.ID,
		SalesOrderID:         r.SalesOrderID,
		FromPurchaseReturnID: r.FromPurchaseReturnID,
		SystemGenerated:      r.SystemGenerated,
		DocStatus:            r.DocStatus.String(),
		Items:                toItemLineResponses(r.Items),
		TotalAmount:          r.TotalAmount(),
		ReturnedPaidAmount:   r.ReturnedPaidAmount,
		CreatedAt:            r.CreatedAt,
	}
}

// ToPurchaseReturnResponse converts a domain PurchaseReturn to a response DTO
func ToPurchaseReturnResponse(r *trade.PurchaseReturn) PurchaseReturnResponse {
	return PurchaseReturnResponse{
		ID:                 r.ID,
		PurchaseOrderID:    r.PurchaseOrderID,
		DocStatus:          r.DocStatus.String(),
		Items:              toItemLineResponses(r.Items),
		ReturnedPaidAmount: r.ReturnedPaidAmount,
		CreatedAt:          r.CreatedAt,
	}
}

// ToPaymentResponse converts a domain Payment to a response DTO
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		VoucherType:  p.Order.Type.String(),
		VoucherNo:    p.Order.ID,
		Amount:       p.Amount,
		PaidWithCash: p.PaidWithCash,
		DocStatus:    p.DocStatus.String(),
	}
}

// ToReceiptResponse converts a domain Receipt to a response DTO
func ToReceiptResponse(r *inventory.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:          r.ID,
		VoucherType: r.Order.Type.String(),
		VoucherNo:   r.Order.ID,
		DocStatus:   r.DocStatus.String(),
	}
}
