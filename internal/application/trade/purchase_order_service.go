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

// PurchaseOrderService handles Purchase Order business operations
type PurchaseOrderService struct {
	*engine
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(deps Dependencies) *PurchaseOrderService {
	return &PurchaseOrderService{engine: newEngine(deps)}
}

// applyPurchaseOrderRequest replaces the editable fields of a draft and checks
// that every requested Sales Order can be purchased through it.
func (s *session) applyPurchaseOrderRequest(ctx context.Context, po *trade.PurchaseOrder, req PurchaseOrderRequest) error {
	po.Name = req.Name
	po.ItemsToSell = toItemLines(req.ItemsToSell)
	po.DeliveryCost = req.DeliveryCost
	po.SalesOrders = po.SalesOrders[:0]
	for _, id := range req.SalesOrderIDs {
		po.LinkSalesOrder(id)
	}

	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	for _, id := range po.SalesOrderIDs() {
		so, ok := linked[id]
		if !ok {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s not found", id))
		}
		if so.IsCancelled() {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s is cancelled", id))
		}
		if so.FromStock() {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s is fulfilled from stock", id))
		}
		other, err := s.purchaseOrderOf(ctx, id)
		if err != nil {
			return err
		}
		if other != nil && other.ID != po.ID {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s is already purchased", id))
		}
	}
	return nil
}

// Create creates a draft Purchase Order
func (s *PurchaseOrderService) Create(ctx context.Context, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po := trade.NewPurchaseOrder(req.Name)
		if err := ss.applyPurchaseOrderRequest(ctx, po, req); err != nil {
			return err
		}
		if err := ss.savePurchaseOrder(ctx, po); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order created", zap.String("purchase_order_id", resp.ID.String()), zap.Int64("total_amount", resp.TotalAmount))
	return &resp, nil
}

// Update replaces the editable fields of a draft Purchase Order
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := po.EnsureDraft(); err != nil {
			return err
		}
		if err := ss.applyPurchaseOrderRequest(ctx, po, req); err != nil {
			return err
		}
		if err := ss.savePurchaseOrder(ctx, po); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a Purchase Order with totals derived from its linked orders
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.recomputePurchaseOrder(ctx, po); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit submits the linked draft Sales Orders, pays the supplier and
// reserves the purchased units.
func (s *PurchaseOrderService) Submit(ctx context.Context, id uuid.UUID, req SubmitPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.submitPurchaseOrder(ctx, po, req.PaidWithCash); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order submitted",
		zap.String("purchase_order_id", id.String()),
		zap.Int64("total_amount", resp.TotalAmount),
		zap.Int("sales_orders", len(resp.SalesOrders)),
	)
	return &resp, nil
}

// Checkout reserves the purchased units of a submitted Purchase Order that
// has not been checked out yet.
func (s *PurchaseOrderService) Checkout(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := po.EnsureStatus("Purchase Order should be To Receive", trade.PurchaseOrderStatusToReceive); err != nil {
			return err
		}
		if err := ss.checkout(ctx, po); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddReceipt records the arrival of the goods
func (s *PurchaseOrderService) AddReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var resp ReceiptResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		receipt, err := ss.receivePurchaseOrder(ctx, po)
		if err != nil {
			return err
		}
		resp = ToReceiptResponse(receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase receipt recorded",
		zap.String("purchase_order_id", id.String()),
		zap.String("receipt_id", resp.ID.String()),
	)
	return &resp, nil
}

// Cancel voids a Purchase Order that still waits for goods. Cancelling a
// cancelled order changes nothing.
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.cancelPurchaseOrder(ctx, po); err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order cancelled", zap.String("purchase_order_id", id.String()))
	return &resp, nil
}

func (s *session) submitPurchaseOrder(ctx context.Context, po *trade.PurchaseOrder, paidWithCash bool) error {
	if err := po.EnsureDraft(); err != nil {
		return err
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	for _, id := range po.SalesOrderIDs() {
		so, ok := linked[id]
		if !ok {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s not found", id))
		}
		if so.IsCancelled() {
			return shared.NewValidationError(fmt.Sprintf("Sales Order %s is cancelled", id))
		}
		if so.IsDraft() {
			if err := s.submitSalesOrder(ctx, so); err != nil {
				return err
			}
		}
	}
	if err := s.recomputePurchaseOrder(ctx, po); err != nil {
		return err
	}
	if err := po.Submit(); err != nil {
		return err
	}
	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return err
	}

	payment, err := finance.NewPayment(shared.OrderKindPurchase, po.ID, po.TotalAmount, paidWithCash)
	if err != nil {
		return err
	}
	if err := payment.MarkSubmitted(); err != nil {
		return err
	}
	if err := s.repos.Payments().Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	posting, err := finance.PurchasePaymentPosting(s.accounts, payment.Ref(), po.ItemsCost(), po.DeliveryCost, paidWithCash)
	if err != nil {
		return err
	}
	if err := s.ledger.Post(ctx, posting); err != nil {
		return err
	}

	if err := s.checkout(ctx, po); err != nil {
		return err
	}
	return s.refreshLinkedSalesOrders(ctx, po)
}

// checkout writes the Reserved Purchased batch for linked Sales Orders and the
// Available Purchased batch for the items to sell.
func (s *session) checkout(ctx context.Context, po *trade.PurchaseOrder) error {
	existing, err := s.repos.Checkouts().FindByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return fmt.Errorf("failed to load checkouts: %w", err)
	}
	for i := range existing {
		if existing[i].IsSubmitted() {
			return shared.NewValidationError("Purchase Order is already checked out")
		}
	}

	c := inventory.NewCheckout(po.ID)
	if err := c.MarkSubmitted(); err != nil {
		return err
	}
	if err := s.repos.Checkouts().Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save checkout: %w", err)
	}
	lookup, err := s.lookup(ctx, po.ItemsToSell)
	if err != nil {
		return err
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	reserved, available := po.CheckoutBatches(linked, lookup)
	if _, err := s.stock.CreateEntry(ctx, c.Ref(), inventory.ReservedPurchased, reserved, false); err != nil {
		return err
	}
	_, err = s.stock.CreateEntry(ctx, c.Ref(), inventory.AvailablePurchased, available, false)
	return err
}

// receivePurchaseOrder moves purchased units to the actual buckets and turns
// the prepaid inventory into inventory.
func (s *session) receivePurchaseOrder(ctx context.Context, po *trade.PurchaseOrder) (*inventory.Receipt, error) {
	if !po.IsSubmitted() {
		return nil, shared.NewValidationError("Purchase Order should be submitted")
	}
	if err := po.MarkReceived(); err != nil {
		return nil, err
	}

	receipt, err := inventory.NewReceipt(shared.OrderKindPurchase, po.ID)
	if err != nil {
		return nil, err
	}
	if err := receipt.MarkSubmitted(); err != nil {
		return nil, err
	}
	if err := s.repos.Receipts().Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}
	if err := s.recomputePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	posting, err := finance.PurchaseReceiptPosting(s.accounts, receipt.Ref(), po.ItemsCost())
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Post(ctx, posting); err != nil {
		return nil, err
	}

	lookup, err := s.lookup(ctx, po.ItemsToSell)
	if err != nil {
		return nil, err
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return nil, err
	}
	reserved, available := po.CheckoutBatches(linked, lookup)
	if err := s.stock.Transfer(ctx, receipt.Ref(), inventory.ReservedPurchased, inventory.ReservedActual, reserved); err != nil {
		return nil, err
	}
	if err := s.stock.Transfer(ctx, receipt.Ref(), inventory.AvailablePurchased, inventory.AvailableActual, available); err != nil {
		return nil, err
	}

	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}
	if err := s.refreshLinkedSalesOrders(ctx, po); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *session) cancelPurchaseOrder(ctx context.Context, po *trade.PurchaseOrder) error {
	if po.IsCancelled() {
		return s.recomputePurchaseOrder(ctx, po)
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	if err := po.EnsureCancellable(linked); err != nil {
		return err
	}
	if err := po.Cancel(); err != nil {
		return err
	}

	payments, err := s.repos.Payments().FindByOrder(ctx, po.Ref())
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

	checkouts, err := s.repos.Checkouts().FindByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return fmt.Errorf("failed to load checkouts: %w", err)
	}
	for i := range checkouts {
		c := &checkouts[i]
		if !c.IsSubmitted() {
			continue
		}
		if err := s.stock.CancelEntriesFor(ctx, c.Ref()); err != nil {
			return err
		}
		if err := c.MarkCancelled(); err != nil {
			return err
		}
		if err := s.repos.Checkouts().Save(ctx, c); err != nil {
			return fmt.Errorf("failed to save checkout: %w", err)
		}
	}

	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return err
	}
	return s.refreshLinkedSalesOrders(ctx, po)
}
