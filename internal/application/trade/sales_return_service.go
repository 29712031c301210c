package trade

import (
	"context"
	"fmt"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesReturnService handles Sales Return business operations
type SalesReturnService struct {
	*engine
}

// NewSalesReturnService creates a new SalesReturnService
func NewSalesReturnService(deps Dependencies) *SalesReturnService {
	return &SalesReturnService{engine: newEngine(deps)}
}

// Create creates a draft return against a Sales Order
func (s *SalesReturnService) Create(ctx context.Context, salesOrderID uuid.UUID) (*SalesReturnResponse, error) {
	var resp SalesReturnResponse
	err := s.run(ctx, func(ss *session) error {
		so, err := ss.salesOrder(ctx, salesOrderID)
		if err != nil {
			return err
		}
		ret := trade.NewSalesReturn(so.ID)
		if err := ss.repos.SalesReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("failed to save sales return: %w", err)
		}
		resp = ToSalesReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a Sales Return
func (s *SalesReturnService) Get(ctx context.Context, id uuid.UUID) (*SalesReturnResponse, error) {
	var resp SalesReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.SalesReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSalesReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ItemsAvailableToAdd lists the items of the Sales Order not yet on the return,
// sorted by item name.
func (s *SalesReturnService) ItemsAvailableToAdd(ctx context.Context, id uuid.UUID) ([]ItemLineResponse, error) {
	var out []ItemLineResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.SalesReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		available, _, err := ss.salesReturnAvailable(ctx, ret)
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

// AddItems adds items to a draft return and previews the money to give back
func (s *SalesReturnService) AddItems(ctx context.Context, id uuid.UUID, req ReturnItemsRequest) (*SalesReturnResponse, error) {
	var resp SalesReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.SalesReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		available, so, err := ss.salesReturnAvailable(ctx, ret)
		if err != nil {
			return err
		}
		if err := ret.AddItems(available, toItemLines(req.Items)); err != nil {
			return err
		}
		after := so.Clone()
		after.ApplyReturn(ret.Items)
		if err := ss.recomputeSalesOrder(ctx, after); err != nil {
			return err
		}
		ret.CalculateReturnedPaidAmount(so.PaidAmount, after.TotalAmount)
		if err := ss.repos.SalesReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("failed to save sales return: %w", err)
		}
		resp = ToSalesReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit finalizes a return: money and stock go back and the Sales Order shrinks
func (s *SalesReturnService) Submit(ctx context.Context, id uuid.UUID) (*SalesReturnResponse, error) {
	var resp SalesReturnResponse
	err := s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.SalesReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ss.submitSalesReturn(ctx, ret); err != nil {
			return err
		}
		resp = ToSalesReturnResponse(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales return submitted",
		zap.String("sales_return_id", id.String()),
		zap.String("sales_order_id", resp.SalesOrderID.String()),
		zap.Int64("returned_paid_amount", resp.ReturnedPaidAmount),
	)
	return &resp, nil
}

// Cancel is rejected: a submitted Sales Return cannot be undone
func (s *SalesReturnService) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.run(ctx, func(ss *session) error {
		ret, err := ss.repos.SalesReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		return ret.Cancel()
	})
}

// salesReturnAvailable returns what may still be added to a return along with
// its recomputed Sales Order.
func (s *session) salesReturnAvailable(ctx context.Context, ret *trade.SalesReturn) ([]trade.ItemLine, *trade.SalesOrder, error) {
	so, err := s.salesOrder(ctx, ret.SalesOrderID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.recomputeSalesOrder(ctx, so); err != nil {
		return nil, nil, err
	}
	if err := ret.ValidateVoucher(so); err != nil {
		return nil, nil, err
	}
	lines, err := s.pricedSplitView(ctx, so)
	if err != nil {
		return nil, nil, err
	}
	return trade.AvailableToAdd(lines, ret.Items), so, nil
}

// submitSalesReturn moves returned units back to the available buckets,
// refunds overpaid money and shrinks the Sales Order. Returns created by
// Sales Order cancellation only move stock.
func (s *session) submitSalesReturn(ctx context.Context, ret *trade.SalesReturn) error {
	so, err := s.salesOrder(ctx, ret.SalesOrderID)
	if err != nil {
		return err
	}
	if err := s.recomputeSalesOrder(ctx, so); err != nil {
		return err
	}
	if err := ret.Validate(so); err != nil {
		return err
	}
	stage := so.DeliveryStatus
	move, err := trade.SalesReturnStockMove(stage)
	if err != nil {
		return err
	}
	if err := ret.Submit(); err != nil {
		return err
	}

	if !ret.SystemGenerated {
		itemsCost, paid := so.ItemsCost, so.PaidAmount
		so.ApplyReturn(ret.Items)
		if err := s.recomputeSalesOrder(ctx, so); err != nil {
			return err
		}
		ret.CalculateReturnedPaidAmount(paid, so.TotalAmount)

		if stage == trade.DeliveryStatusDelivered {
			posting, err := finance.ReturnedInventoryPosting(s.accounts, ret.Ref(), itemsCost-so.ItemsCost)
			if err != nil {
				return err
			}
			if err := s.ledger.Post(ctx, posting); err != nil {
				return err
			}
		}
		if ret.ReturnedPaidAmount > 0 {
			cash, err := s.paidWithCash(ctx, so.Ref())
			if err != nil {
				return err
			}
			posting, err := finance.CustomerRefundPosting(s.accounts, ret.Ref(), ret.ReturnedPaidAmount, cash)
			if err != nil {
				return err
			}
			if err := s.ledger.Post(ctx, posting); err != nil {
				return err
			}
		}
	}

	items := trade.ToStockItems(ret.Items)
	if move.From != "" {
		err = s.stock.Transfer(ctx, ret.Ref(), move.From, move.To, items)
	} else {
		_, err = s.stock.CreateEntry(ctx, ret.Ref(), move.To, items, false)
	}
	if err != nil {
		return err
	}

	var po *trade.PurchaseOrder
	if stage == trade.DeliveryStatusPurchased && ret.FromPurchaseReturnID == nil {
		if po, err = s.purchaseOrderOf(ctx, so.ID); err != nil {
			return err
		}
		if po != nil {
			po.AddItemsToSell(ret.Items)
		}
	}

	if err := s.repos.SalesReturns().Save(ctx, ret); err != nil {
		return fmt.Errorf("failed to save sales return: %w", err)
	}
	if len(so.Items) == 0 && so.IsSubmitted() {
		if err := so.MarkCancelled(); err != nil {
			return err
		}
		s.logger.Info("sales order emptied by return", zap.String("sales_order_id", so.ID.String()))
	}
	if err := s.saveSalesOrder(ctx, so); err != nil {
		return err
	}
	if po != nil {
		return s.savePurchaseOrder(ctx, po)
	}
	return nil
}

// cancelSalesReturnEntries voids the ledger and stock rows of a return
func (s *session) cancelSalesReturnEntries(ctx context.Context, ret *trade.SalesReturn) error {
	if !ret.IsSubmitted() {
		return nil
	}
	if err := s.ledger.CancelEntriesFor(ctx, ret.Ref()); err != nil {
		return err
	}
	if err := s.stock.CancelEntriesFor(ctx, ret.Ref()); err != nil {
		return err
	}
	if err := ret.MarkCancelled(); err != nil {
		return err
	}
	if err := s.repos.SalesReturns().Save(ctx, ret); err != nil {
		return fmt.Errorf("failed to save sales return: %w", err)
	}
	return nil
}
