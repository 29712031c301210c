package trade

import (
	"context"
	"errors"
	"fmt"

	appfinance "github.com/comfort/backend/internal/application/finance"
	appinventory "github.com/comfort/backend/internal/application/inventory"
	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies are the collaborators shared by the trading services
type Dependencies struct {
	Scope    TransactionScope
	Catalog  catalog.ItemCatalog
	Brackets pricing.BracketStore
	Accounts finance.AccountSettings
	Logger   *zap.Logger
}

type engine struct {
	scope    TransactionScope
	catalog  catalog.ItemCatalog
	brackets pricing.BracketStore
	accounts finance.AccountSettings
	logger   *zap.Logger
}

func newEngine(deps Dependencies) *engine {
	e := &engine{
		scope:    deps.Scope,
		catalog:  deps.Catalog,
		brackets: deps.Brackets,
		accounts: deps.Accounts,
		logger:   deps.Logger,
	}
	if e.accounts == nil {
		e.accounts = finance.DefaultAccountSettings()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// run executes fn in one transaction with a fresh session
func (e *engine) run(ctx context.Context, fn func(s *session) error) error {
	return e.scope.Execute(ctx, func(repos Repositories) error {
		return fn(e.newSession(repos))
	})
}

// session carries the state of one transactional operation. Vouchers fetched
// during the operation are cached so every step sees the same instance.
type session struct {
	repos    Repositories
	ledger   *appfinance.Ledger
	stock    *appinventory.Stock
	catalog  catalog.ItemCatalog
	brackets pricing.BracketStore
	accounts finance.AccountSettings
	logger   *zap.Logger

	commission     *pricing.CommissionSettings
	salesOrders    map[uuid.UUID]*trade.SalesOrder
	purchaseOrders map[uuid.UUID]*trade.PurchaseOrder
}

func (e *engine) newSession(repos Repositories) *session {
	return &session{
		repos:          repos,
		ledger:         appfinance.NewLedger(repos.Accounts(), repos.GLEntries(), repos.Locker(), e.logger),
		stock:          appinventory.NewStock(repos.StockEntries(), repos.Locker(), e.logger),
		catalog:        e.catalog,
		brackets:       e.brackets,
		accounts:       e.accounts,
		logger:         e.logger,
		salesOrders:    make(map[uuid.UUID]*trade.SalesOrder),
		purchaseOrders: make(map[uuid.UUID]*trade.PurchaseOrder),
	}
}

// lookup loads the catalog entries of every code in groups, children included
func (s *session) lookup(ctx context.Context, groups ...[]trade.ItemLine) (catalog.Lookup, error) {
	var lines []trade.ItemLine
	for _, g := range groups {
		lines = append(lines, g...)
	}
	codes := trade.Codes(lines)
	if len(codes) == 0 {
		return catalog.Lookup{}, nil
	}
	lookup, err := catalog.LoadWithChildren(ctx, s.catalog, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return lookup, nil
}

func (s *session) commissionSettings(ctx context.Context) (*pricing.CommissionSettings, error) {
	if s.commission != nil {
		return s.commission, nil
	}
	settings, err := s.brackets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}
	s.commission = settings
	return settings, nil
}

func (s *session) salesOrder(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	if so, ok := s.salesOrders[id]; ok {
		return so, nil
	}
	so, err := s.repos.SalesOrders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.salesOrders[id] = so
	return so, nil
}

// linkedSalesOrders returns the Sales Orders a Purchase Order links to
func (s *session) linkedSalesOrders(ctx context.Context, po *trade.PurchaseOrder) (map[uuid.UUID]*trade.SalesOrder, error) {
	out := make(map[uuid.UUID]*trade.SalesOrder, len(po.SalesOrders))
	var missing []uuid.UUID
	for _, id := range po.SalesOrderIDs() {
		if so, ok := s.salesOrders[id]; ok {
			out[id] = so
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}
	found, err := s.repos.SalesOrders().FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, so := range found {
		s.salesOrders[id] = so
		out[id] = so
	}
	return out, nil
}

func (s *session) purchaseOrder(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	if po, ok := s.purchaseOrders[id]; ok {
		return po, nil
	}
	po, err := s.repos.PurchaseOrders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.purchaseOrders[id] = po
	return po, nil
}

// purchaseOrderOf returns the submitted Purchase Order a Sales Order is linked
// to, or nil when there is none.
func (s *session) purchaseOrderOf(ctx context.Context, salesOrderID uuid.UUID) (*trade.PurchaseOrder, error) {
	for _, po := range s.purchaseOrders {
		if po.IsSubmitted() && po.HasSalesOrder(salesOrderID) {
			return po, nil
		}
	}
	po, err := s.repos.PurchaseOrders().FindSubmittedBySalesOrder(ctx, salesOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if cached, ok := s.purchaseOrders[po.ID]; ok {
		return cached, nil
	}
	s.purchaseOrders[po.ID] = po
	return po, nil
}

// facts gathers what a Sales Order derives its amounts and statuses from
func (s *session) facts(ctx context.Context, so *trade.SalesOrder) (trade.SalesOrderFacts, error) {
	var facts trade.SalesOrderFacts

	payments, err := s.repos.Payments().FindByOrder(ctx, so.Ref())
	if err != nil {
		return facts, fmt.Errorf("failed to load payments: %w", err)
	}
	returns, err := s.repos.SalesReturns().FindBySalesOrder(ctx, so.ID)
	if err != nil {
		return facts, fmt.Errorf("failed to load returns: %w", err)
	}
	var vouchers []shared.VoucherRef
	for i := range payments {
		if payments[i].IsSubmitted() {
			vouchers = append(vouchers, payments[i].Ref())
		}
	}
	for i := range returns {
		if returns[i].IsSubmitted() {
			vouchers = append(vouchers, returns[i].Ref())
		}
	}
	if facts.PaidAmount, err = s.ledger.PaidAmount(ctx, s.accounts, vouchers); err != nil {
		return facts, err
	}

	receipts, err := s.repos.Receipts().FindByOrder(ctx, so.Ref())
	if err != nil {
		return facts, fmt.Errorf("failed to load receipts: %w", err)
	}
	for i := range receipts {
		if receipts[i].IsSubmitted() {
			facts.HasReceipt = true
			break
		}
	}

	po, err := s.purchaseOrderOf(ctx, so.ID)
	if err != nil {
		return facts, err
	}
	if po != nil {
		facts.PurchaseStage = po.PurchaseStage()
	}
	return facts, nil
}

func (s *session) recomputeSalesOrder(ctx context.Context, so *trade.SalesOrder) error {
	lookup, err := s.lookup(ctx, so.Items)
	if err != nil {
		return err
	}
	settings, err := s.commissionSettings(ctx)
	if err != nil {
		return err
	}
	facts, err := s.facts(ctx, so)
	if err != nil {
		return err
	}
	return so.Recompute(lookup, settings, facts)
}

func (s *session) saveSalesOrder(ctx context.Context, so *trade.SalesOrder) error {
	if err := s.recomputeSalesOrder(ctx, so); err != nil {
		return err
	}
	if err := s.repos.SalesOrders().Save(ctx, so); err != nil {
		return fmt.Errorf("failed to save sales order: %w", err)
	}
	s.salesOrders[so.ID] = so
	return nil
}

func (s *session) recomputePurchaseOrder(ctx context.Context, po *trade.PurchaseOrder) error {
	lookup, err := s.lookup(ctx, po.ItemsToSell)
	if err != nil {
		return err
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	return po.Recompute(lookup, linked)
}

func (s *session) savePurchaseOrder(ctx context.Context, po *trade.PurchaseOrder) error {
	if err := s.recomputePurchaseOrder(ctx, po); err != nil {
		return err
	}
	if err := s.repos.PurchaseOrders().Save(ctx, po); err != nil {
		return fmt.Errorf("failed to save purchase order: %w", err)
	}
	s.purchaseOrders[po.ID] = po
	return nil
}

// refreshLinkedSalesOrders re-derives and stores every linked, not cancelled
// Sales Order after the Purchase Order changed stage.
func (s *session) refreshLinkedSalesOrders(ctx context.Context, po *trade.PurchaseOrder) error {
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return err
	}
	for _, id := range po.SalesOrderIDs() {
		so, ok := linked[id]
		if !ok || so.IsCancelled() {
			continue
		}
		if err := s.saveSalesOrder(ctx, so); err != nil {
			return err
		}
	}
	return nil
}

// paidWithCash reports how an order was paid: the method of its first
// submitted payment, bank when there is none.
func (s *session) paidWithCash(ctx context.Context, order shared.VoucherRef) (bool, error) {
	payments, err := s.repos.Payments().FindByOrder(ctx, order)
	if err != nil {
		return false, fmt.Errorf("failed to load payments: %w", err)
	}
	for i := range payments {
		if payments[i].IsSubmitted() {
			return payments[i].PaidWithCash, nil
		}
	}
	return false, nil
}

// pricedSplitView returns a Sales Order's split lines with child lines priced
// from the catalog.
func (s *session) pricedSplitView(ctx context.Context, so *trade.SalesOrder) ([]trade.ItemLine, error) {
	lines := so.SplitView()
	lookup, err := s.lookup(ctx, lines)
	if err != nil {
		return nil, err
	}
	trade.BackfillFromCatalog(lines, lookup)
	return lines, nil
}

// purchaseReturnPool returns the allocation pool of a Purchase Order
func (s *session) purchaseReturnPool(ctx context.Context, po *trade.PurchaseOrder) ([]trade.SourcedLines, error) {
	lookup, err := s.lookup(ctx, po.ItemsToSell)
	if err != nil {
		return nil, err
	}
	linked, err := s.linkedSalesOrders(ctx, po)
	if err != nil {
		return nil, err
	}
	priced := make(map[uuid.UUID]*trade.SalesOrder, len(linked))
	for id, so := range linked {
		lines, err := s.pricedSplitView(ctx, so)
		if err != nil {
			return nil, err
		}
		// Only the split view of the copy is read below.
		c := so.Clone()
		c.Items, c.ChildItems = lines, nil
		priced[id] = c
	}
	return trade.PurchaseReturnLines(po, po.ItemsToSellSplit(lookup), priced), nil
}
