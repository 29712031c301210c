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

// PurchaseReturnService handles Purchase Return business operations
type PurchaseReturnService struct {
	*engine
}

// NewPurchaseReturnService creates a new PurchaseReturnService
func NewPurchaseReturnService(deps Dependencies) *PurchaseReturnService {
	return &PurchaseReturnService{engine: newEngine(deps)}
}

// Create creates a draft return against a Purchase Order
func (s *PurchaseReturnService) Create(ctx context.Context, purchaseOrderID uuid.UUID) (*PurchaseReturnResponse, error) {
	var resp PurchaseReturnResponse
	err := s.run(ctx, func(ss *session) error {
		po, err := ss.purchaseOrder(ctx, purchaseOrderID)
		if err != nil {
			return err
		}
		ret := trade.NewPurchaseReturn(po.ID)
		if err := ss.repos.PurchaseReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("failed to save purchase return: %w", err)
		}
		resp = ToPurchaseReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a Purchase Return
func (s *PurchaseReturnService) Get(ctx context.Context, id uuid.UUID) (*PurchaseReturnResponse, error) {
	var resp PurchaseReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToPurchaseReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ItemsAvailableToAdd lists the items of the Purchase Order not yet on the
// return, sorted by item name.
func (s *PurchaseReturnService) ItemsAvailableToAdd(ctx context.Context, id uuid.UUID) ([]ItemLineResponse, error) {
	var out []ItemLineResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		available, err := ss.purchaseReturnAvailable(ctx, ret)
		if err != nil {
			return err
		}
		out = toItemLineResponses(available)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddItems adds items to a draft return
func (s *PurchaseReturnService) AddItems(ctx context.Context, id uuid.UUID, req ReturnItemsRequest) (*PurchaseReturnResponse, error) {
	var resp PurchaseReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		available, err := ss.purchaseReturnAvailable(ctx, ret)
		if err != nil {
			return err
		}
		if err := ret.AddItems(available, toItemLines(req.Items)); err != nil {
			return err
		}
		if err := ss.repos.PurchaseReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("failed to save purchase return: %w", err)
		}
		resp = ToPurchaseReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit finalizes a return: the supplier refunds the goods, the affected
// Sales Orders get returns of their own and the Purchase Order shrinks.
func (s *PurchaseReturnService) Submit(ctx context.Context, id uuid.UUID) (*PurchaseReturnResponse, error) {
	var resp PurchaseReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.submitPurchaseReturn(ctx, ret); err != nil {
			return err
		}
		resp = ToPurchaseReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase return submitted",
		zap.String("purchase_return_id", id.String()),
		zap.String("purchase_order_id", resp.PurchaseOrderID.String()),
		zap.Int64("returned_paid_amount", resp.ReturnedPaidAmount),
	)
	return &resp, nil
}

// Cancel voids a return while its Purchase Order still waits for goods.
// Cancelling a cancelled return changes nothing.
func (s *PurchaseReturnService) Cancel(ctx context.Context, id uuid.UUID) (*PurchaseReturnResponse, error) {
	var resp PurchaseReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.cancelPurchaseReturn(ctx, ret); err != nil {
			return err
		}
		resp = ToPurchaseReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase return cancelled", zap.String("purchase_return_id", id.String()))
	return &resp, nil
}

func (s *session) purchaseReturnAvailable(ctx context.Context, ret *trade.PurchaseReturn) ([]trade.ItemLine, error) {
	po, err := s.purchaseOrder(ctx, ret.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if err := ret.ValidateVoucher(po); err != nil {
		return nil, err
	}
	pool, err := s.purchaseReturnPool(ctx, po)
	if err != nil {
		return nil, err
	}
	return trade.AvailableToAdd(trade.FlattenPool(pool), ret.Items), nil
}

// submitPurchaseReturn takes returned units first from the items to sell and
// then from linked Sales Orders in link order.
func (s *session) submitPurchaseReturn(ctx context.Context, ret *trade.PurchaseReturn) error {
	po, err := s.purchaseOrder(ctx, ret.PurchaseOrderID)
	if err != nil {
		return err
	}
	pool, err := s.purchaseReturnPool(ctx, po)
	if err != nil {
		return err
	}
	if err := ret.Validate(po, trade.FlattenPool(pool)); err != nil {
		return err
	}
	if err := ret.Submit(); err != nil {
		return err
	}
	received := po.Status == trade.PurchaseOrderStatusCompleted
	alloc := trade.AllocateReturn(ret.Items, pool)

	for _, a := range alloc.SalesOrders {
		sr := trade.NewSalesReturn(a.SalesOrderID)
		sr.FromPurchaseReturnID = &ret.ID
		sr.Items = a.Items
		if err := s.submitSalesReturn(ctx, sr); err != nil {
			return err
		}
		s.logger.Info("sales return spawned by purchase return",
			zap.String("purchase_return_id", ret.ID.String()),
			zap.String("sales_order_id", a.SalesOrderID.String()),
			zap.String("sales_return_id", sr.ID.String()),
		)
	}

	if len(alloc.ItemsToSell) > 0 {
		lookup, err := s.lookup(ctx, po.ItemsToSell)
		if err != nil {
			return err
		}
		po.SplitItemsToSell(lookup)
		po.RemoveItemsToSell(alloc.ItemsToSell)
	}
	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return err
	}

	cash, err := s.paidWithCash(ctx, po.Ref())
	if err != nil {
		return err
	}
	posting, err := finance.SupplierRefundPosting(s.accounts, ret.Ref(), ret.ReturnedPaidAmount, cash, received)
	if err != nil {
		return err
	}
	if err := s.ledger.Post(ctx, posting); err != nil {
		return err
	}

	bucket := inventory.AvailablePurchased
	if received {
		bucket = inventory.AvailableActual
	}
	if _, err := s.stock.CreateEntry(ctx, ret.Ref(), bucket, trade.ToStockItems(ret.Items), true); err != nil {
		return err
	}
	if err := s.repos.PurchaseReturns().Save(ctx, ret); err != nil {
		return fmt.Errorf("failed to save purchase return: %w", err)
	}
	return nil
}

// cancelPurchaseReturn voids the rows of a return and of the Sales Returns it
// spawned, then gives the returned units back to the items to sell and to the
// Sales Orders they were taken from.
func (s *session) cancelPurchaseReturn(ctx context.Context, ret *trade.PurchaseReturn) error {
	if ret.IsCancelled() {
		return nil
	}
	po, err := s.purchaseOrder(ctx, ret.PurchaseOrderID)
	if err != nil {
		return err
	}
	spawned, err := s.repos.SalesReturns().FindByPurchaseReturn(ctx, ret.ID)
	if err != nil {
		return fmt.Errorf("failed to load spawned sales returns: %w", err)
	}
	orders := make([]*trade.SalesOrder, len(spawned))
	for i := range spawned {
		so, err := s.salesOrder(ctx, spawned[i].SalesOrderID)
		if err != nil {
			return err
		}
		if so.IsCancelled() {
			return shared.NewValidationError(fmt.Sprintf(
				"Not allowed to cancel Purchase Return: Sales Order %s is cancelled", so.ID))
		}
		orders[i] = so
	}
	if err := ret.Cancel(po); err != nil {
		return err
	}
	if err := s.ledger.CancelEntriesFor(ctx, ret.Ref()); err != nil {
		return err
	}
	if err := s.stock.CancelEntriesFor(ctx, ret.Ref()); err != nil {
		return err
	}

	for i := range spawned {
		sr, so := &spawned[i], orders[i]
		if err := s.cancelSalesReturnEntries(ctx, sr); err != nil {
			return err
		}
		so.RestoreReturn(sr.Items)
		if err := s.saveSalesOrder(ctx, so); err != nil {
			return err
		}
	}
	po.AddItemsToSell(ret.ItemsToSellShare(spawned))
	if err := s.savePurchaseOrder(ctx, po); err != nil {
		return err
	}
	if err := s.repos.PurchaseReturns().Save(ctx, ret); err != nil {
		return fmt.Errorf("failed to save purchase return: %w", err)
	}
	return nil
}
