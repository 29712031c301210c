package trade

import (
	"context"
	"fmt"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesOrderService handles Sales Order business operations
type SalesOrderService struct {
	*engine
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(deps Dependencies) *SalesOrderService {
	return &SalesOrderService{engine: newEngine(deps)}
}

func applySalesOrderRequest(so *trade.SalesOrder, req SalesOrderRequest) error {
	so.Customer = req.Customer
	so.Items = toItemLines(req.Items)
	so.Services = toServices(req.Services)
	so.Discount = req.Discount
	so.FromAvailableStock = inventory.StockType(req.FromAvailableStock)
	so.FromPurchaseOrderID = req.FromPurchaseOrderID
	if req.Commission != nil {
		return so.SetCommission(*req.Commission)
	}
	so.EditCommission = false
	return nil
}

// Create creates a draft Sales Order
func (s *SalesOrderService) Create(ctx context.Context, req SalesOrderRequest) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := trade.NewSalesOrder(req.Customer)
		if err != nil {
			return err
		}
		if err := applySalesOrderRequest(so, req); err != nil {
			return err
		}
		if err := ss.saveSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order created", zap.String("sales_order_id", resp.ID.String()), zap.Int64("total_amount", resp.TotalAmount))
	return &resp, nil
}

// Update replaces the editable fields of a draft Sales Order
func (s *SalesOrderService) Update(ctx context.Context, id uuid.UUID, req SalesOrderRequest) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := so.EnsureDraft(); err != nil {
			return err
		}
		if err := applySalesOrderRequest(so, req); err != nil {
			return err
		}
		if err := ss.saveSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a Sales Order with amounts and statuses derived from the current ledger and stock
func (s *SalesOrderService) Get(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.recomputeSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CalculateCommissionAndMargin previews the commission and margin of a Sales
// Order without storing anything.
func (s *SalesOrderService) CalculateCommissionAndMargin(ctx context.Context, req SalesOrderRequest) (*SalesOrderResponse, error) {
	so, err := trade.NewSalesOrder(req.Customer)
	if err != nil {
		return nil, err
	}
	if err := applySalesOrderRequest(so, req); err != nil {
		return nil, err
	}
	err = s.run(ctx, func(ss *session) error {
		lookup, err := ss.lookup(ctx, so.Items)
		if err != nil {
			return err
		}
		settings, err := ss.commissionSettings(ctx)
		if err != nil {
			return err
		}
		return so.Recompute(lookup, settings, trade.SalesOrderFacts{})
	})
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(so)
	return &resp, nil
}

// Submit finalizes a draft Sales Order
func (s *SalesOrderService) Submit(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.submitSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order submitted",
		zap.String("sales_order_id", id.String()),
		zap.String("delivery_status", resp.DeliveryStatus),
	)
	return &resp, nil
}

// Cancel voids a submitted Sales Order together with its payments and
// receipts. Cancelling a cancelled order changes nothing.
func (s *SalesOrderService) Cancel(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.cancelSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order cancelled", zap.String("sales_order_id", id.String()))
	return &resp, nil
}

// AddPayment records money received from the customer
func (s *SalesOrderService) AddPayment(ctx context.Context, id uuid.UUID, req AddPaymentRequest) (*PaymentResponse, error) {
	var resp PaymentResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if !so.IsSubmitted() {
			return shared.NewValidationError("Sales Order should be submitted")
		}
		payment, err := finance.NewPayment(shared.OrderKindSales, so.ID, req.Amount, req.PaidWithCash)
		if err != nil {
			return err
		}
		if err := payment.MarkSubmitted(); err != nil {
			return err
		}
		if err := ss.repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		posting, err := finance.SalesPaymentPosting(ss.accounts, payment.Ref(), payment.Amount, payment.PaidWithCash)
		if err != nil {
			return err
		}
		if err := ss.ledger.Post(ctx, posting); err != nil {
			return err
		}
		if err := ss.saveSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToPaymentResponse(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales payment recorded",
		zap.String("sales_order_id", id.String()),
		zap.String("payment_id", resp.ID.String()),
		zap.Int64("amount", resp.Amount),
	)
	return &resp, nil
}

// AddReceipt records the delivery of an order to the customer
func (s *SalesOrderService) AddReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var resp ReceiptResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.recomputeSalesOrder(ctx, so); err != nil {
			return err
		}
		if !so.IsSubmitted() {
			return shared.NewValidationError("Sales Order should be submitted")
		}
		if so.DeliveryStatus != trade.DeliveryStatusToDeliver {
			return shared.NewValidationError("Delivery Status should be To Deliver")
		}
		items := so.StockItems()
		if err := ss.stock.EnsureAvailable(ctx, inventory.ReservedActual, items); err != nil {
			return err
		}
		receipt, err := inventory.NewReceipt(shared.OrderKindSales, so.ID)
		if err != nil {
			return err
		}
		if err := receipt.MarkSubmitted(); err != nil {
			return err
		}
		if err := ss.repos.Receipts().Save(ctx, receipt); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}
		posting, err := finance.SalesReceiptPosting(ss.accounts, receipt.Ref(), so.SalesAmounts())
		if err != nil {
			return err
		}
		if err := ss.ledger.Post(ctx, posting); err != nil {
			return err
		}
		if _, err := ss.stock.CreateEntry(ctx, receipt.Ref(), inventory.ReservedActual, items, true); err != nil {
			return err
		}
		if err := ss.saveSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToReceiptResponse(receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales receipt recorded",
		zap.String("sales_order_id", id.String()),
		zap.String("receipt_id", resp.ID.String()),
	)
	return &resp, nil
}

// SplitCombinations replaces combination lines by their child items
func (s *SalesOrderService) SplitCombinations(ctx context.Context, id uuid.UUID, req SplitCombinationsRequest) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, id)
		if err != nil {
			return err
		}
		if so.IsCancelled() {
			return shared.NewValidationError("Sales Order is cancelled")
		}
		so.SplitCombinations(req.Combinations)
		if err := ss.saveSalesOrder(ctx, so); err != nil {
			return err
		}
		resp = ToSalesOrderResponse(so)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// submitSalesOrder submits a draft order and reserves stock when it is
// fulfilled from an available bucket.
func (s *session) submitSalesOrder(ctx context.Context, so *trade.SalesOrder) error {
	if err := s.recomputeSalesOrder(ctx, so); err != nil {
		return err
	}
	if err := so.Submit(); err != nil {
		return err
	}

	switch so.FromAvailableStock {
	case inventory.AvailableActual:
		items := so.StockItems()
		if err := s.stock.EnsureAvailable(ctx, inventory.AvailableActual, items); err != nil {
			return err
		}
		if err := s.stock.Transfer(ctx, so.Ref(), inventory.AvailableActual, inventory.ReservedActual, items); err != nil {
			return err
		}
	case inventory.AvailablePurchased:
		if err := s.foldIntoPurchaseOrder(ctx, so); err != nil {
			return err
		}
	}
	return s.saveSalesOrder(ctx, so)
}

// foldIntoPurchaseOrder takes the order's items from a Purchase Order's items
// to sell and links the order to it.
func (s *session) foldIntoPurchaseOrder(ctx context.Context, so *trade.SalesOrder) error {
	po, err := s.purchaseOrder(ctx, *so.FromPurchaseOrderID)
	if err != nil {
		return err
	}
	if !po.IsSubmitted() || po.Status != trade.PurchaseOrderStatusToReceive {
		return shared.NewValidationError("Purchase Order should be To Receive")
	}
	lookup, err := s.lookup(ctx, po.ItemsToSell, so.Items)
	if err != nil {
		return err
	}
	lines := so.SplitView()
	if err := po.TakeItemsToSell(lines, lookup); err != nil {
		return err
	}
	po.LinkSalesOrder(so.ID)
	s.salesOrders[so.ID] = so
	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return err
	}
	s.logger.Info("sales order folded into purchase order",
		zap.String("sales_order_id", so.ID.String()),
		zap.String("purchase_order_id", po.ID.String()),
	)
	return s.stock.Transfer(ctx, so.Ref(), inventory.AvailablePurchased, inventory.ReservedPurchased, trade.ToStockItems(lines))
}

// cancelSalesOrder voids an order's payments and receipts and gives its
// reserved units back to the available buckets.
func (s *session) cancelSalesOrder(ctx context.Context, so *trade.SalesOrder) error {
	if so.IsCancelled() {
		return s.recomputeSalesOrder(ctx, so)
	}
	if !so.IsSubmitted() {
		return shared.NewValidationError("Sales Order should be submitted")
	}

	payments, err := s.repos.Payments().FindByOrder(ctx, so.Ref())
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	for i := range payments {
		p := &payments[i]
		if !p.IsSubmitted() {
			continue
		}
		if err := s.ledger.CancelEntriesFor(ctx, p.Ref()); err != nil {
			return err
		}
		if err := p.MarkCancelled(); err != nil {
			return err
		}
		if err := s.repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
	}

	receipts, err := s.repos.Receipts().FindByOrder(ctx, so.Ref())
	if err != nil {
		return fmt.Errorf("failed to load receipts: %w", err)
	}
	for i := range receipts {
		r := &receipts[i]
		if !r.IsSubmitted() {
			continue
		}
		if err := s.ledger.CancelEntriesFor(ctx, r.Ref()); err != nil {
			return err
		}
		if err := s.stock.CancelEntriesFor(ctx, r.Ref()); err != nil {
			return err
		}
		if err := r.MarkCancelled(); err != nil {
			return err
		}
		if err := s.repos.Receipts().Save(ctx, r); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}
	}

	if err := s.recomputeSalesOrder(ctx, so); err != nil {
		return err
	}
	switch so.DeliveryStatus {
	case trade.DeliveryStatusPurchased, trade.DeliveryStatusToDeliver:
		lines, err := s.pricedSplitView(ctx, so)
		if err != nil {
			return err
		}
		ret := trade.NewSalesReturn(so.ID)
		ret.SystemGenerated = true
		ret.Items = lines
		if err := s.submitSalesReturn(ctx, ret); err != nil {
			return err
		}
	}

	if err := so.MarkCancelled(); err != nil {
		return err
	}
	if err := s.saveSalesOrder(ctx, so); err != nil {
		return err
	}
	po, err := s.purchaseOrderOf(ctx, so.ID)
	if err != nil {
		return err
	}
	if po != nil {
		return s.savePurchaseOrder(ctx, po)
	}
	return nil
}
