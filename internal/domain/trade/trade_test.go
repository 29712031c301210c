package trade

import (
	"testing"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() catalog.Lookup {
	return catalog.Lookup{
		"COMBO": {Code: "COMBO", Name: "Wardrobe", Rate: 17950, Weight: 80, Children: []catalog.ChildItem{
			{ItemCode: "FRAME", ItemName: "Frame", Qty: 2},
			{ItemCode: "DOOR", ItemName: "Door", Qty: 1},
		}},
		"FRAME": {Code: "FRAME", Name: "Frame", Rate: 5000, Weight: 30},
		"DOOR":  {Code: "DOOR", Name: "Door", Rate: 7950, Weight: 20},
		"CHAIR": {Code: "CHAIR", Name: "Chair", Rate: 1494, Weight: 5},
	}
}

func testSettings(t *testing.T) *pricing.CommissionSettings {
	s, err := pricing.NewCommissionSettings([]pricing.CommissionRange{
		{ToAmount: 100, Percentage: 20},
		{ToAmount: 200, Percentage: 15},
		{ToAmount: 0, Percentage: 10},
	})
	require.NoError(t, err)
	return s
}

func newOrder(t *testing.T, items ...ItemLine) *SalesOrder {
	so, err := NewSalesOrder("John")
	require.NoError(t, err)
	so.Items = items
	return so
}

func TestSalesOrder_Recompute(t *testing.T) {
	t.Run("combination with services and a partial payment", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 1})
		so.Services = []Service{
			{Type: ServiceDeliveryToApartment, Rate: 200},
			{Type: ServiceInstallation, Rate: 600},
		}
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{PaidAmount: 500}))

		assert.Equal(t, int64(17950), so.ItemsCost)
		assert.Equal(t, int64(10), so.Commission)
		assert.Equal(t, int64(1800), so.Margin)
		assert.Equal(t, int64(800), so.ServiceAmount)
		assert.Equal(t, int64(17950+1800+800), so.TotalAmount)
		assert.Equal(t, int64(500), so.PaidAmount)
		assert.Equal(t, so.TotalAmount-500, so.PendingAmount)
		assert.Equal(t, PaymentStatusPartiallyPaid, so.PaymentStatus)
		assert.Equal(t, DeliveryStatusToPurchase, so.DeliveryStatus)
		assert.Equal(t, SalesOrderStatusDraft, so.Status)
		assert.Equal(t, 80.0, so.TotalWeight)
		require.Len(t, so.ChildItems, 2)
		assert.Equal(t, ChildItem{ParentItemCode: "COMBO", ItemCode: "FRAME", ItemName: "Frame", Qty: 2}, so.ChildItems[0])
	})

	t.Run("merges duplicates and drops empty lines", func(t *testing.T) {
		so := newOrder(t,
			ItemLine{ItemCode: "CHAIR", Qty: 1},
			ItemLine{ItemCode: "COMBO", Qty: 0},
			ItemLine{ItemCode: "CHAIR", Qty: 2},
		)
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		require.Len(t, so.Items, 1)
		assert.Equal(t, int64(3), so.Items[0].Qty)
		assert.Equal(t, "Chair", so.Items[0].ItemName)
		assert.Equal(t, int64(3*1494), so.ItemsCost)
		assert.Empty(t, so.ChildItems)
	})

	t.Run("manual commission is kept", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
		require.NoError(t, so.SetCommission(15))
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		assert.Equal(t, int64(15), so.Commission)
		assert.Equal(t, int64(216), so.Margin)
	})

	t.Run("child items are regenerated", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 2})
		so.ChildItems = []ChildItem{{ParentItemCode: "X", ItemCode: "Y", Qty: 9}}
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		assert.Equal(t, map[string]int64{"FRAME": 4, "DOOR": 2}, CountQty(so.SplitView()))
	})

	t.Run("nested combination is rejected", func(t *testing.T) {
		lookup := testLookup()
		lookup["SET"] = &catalog.Item{Code: "SET", Name: "Set", Rate: 1, Children: []catalog.ChildItem{{ItemCode: "COMBO", Qty: 1}}}
		so := newOrder(t, ItemLine{ItemCode: "SET", Qty: 1})
		err := so.Recompute(lookup, testSettings(t), SalesOrderFacts{})
		require.Error(t, err)
		assert.Equal(t, "Child Item COMBO cannot have children", err.Error())
	})

	t.Run("unknown item", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "SOFA", Qty: 1})
		err := so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("from purchased stock needs a purchase order", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
		so.FromAvailableStock = inventory.AvailablePurchased
		err := so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("empty order is fully paid", func(t *testing.T) {
		so := newOrder(t)
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		assert.True(t, so.PerPaid.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, PaymentStatusPaid, so.PaymentStatus)
	})
}

func TestSalesOrder_PaymentStatus(t *testing.T) {
	so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 3})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
	total := so.TotalAmount

	tests := []struct {
		paid int64
		want PaymentStatus
	}{
		{0, PaymentStatusUnpaid},
		{1, PaymentStatusPartiallyPaid},
		{total - 1, PaymentStatusPartiallyPaid},
		{total, PaymentStatusPaid},
		{total + 1, PaymentStatusOverpaid},
	}
	for _, tt := range tests {
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{PaidAmount: tt.paid}))
		assert.Equal(t, tt.want, so.PaymentStatus, "paid %d of %d", tt.paid, total)
	}
}

func TestSalesOrder_DeliveryStatus(t *testing.T) {
	tests := []struct {
		name      string
		docStatus shared.DocStatus
		fromStock inventory.StockType
		facts     SalesOrderFacts
		want      DeliveryStatus
		status    SalesOrderStatus
	}{
		{"draft", shared.DocStatusDraft, "", SalesOrderFacts{}, DeliveryStatusToPurchase, SalesOrderStatusDraft},
		{"submitted unlinked", shared.DocStatusSubmitted, "", SalesOrderFacts{}, DeliveryStatusToPurchase, SalesOrderStatusInProgress},
		{"ordered", shared.DocStatusSubmitted, "", SalesOrderFacts{PurchaseStage: PurchaseStageOrdered}, DeliveryStatusPurchased, SalesOrderStatusInProgress},
		{"received", shared.DocStatusSubmitted, "", SalesOrderFacts{PurchaseStage: PurchaseStageReceived}, DeliveryStatusToDeliver, SalesOrderStatusInProgress},
		{"delivered", shared.DocStatusSubmitted, "", SalesOrderFacts{HasReceipt: true, PurchaseStage: PurchaseStageReceived}, DeliveryStatusDelivered, SalesOrderStatusInProgress},
		{"from stock draft", shared.DocStatusDraft, inventory.AvailableActual, SalesOrderFacts{}, DeliveryStatusToPurchase, SalesOrderStatusDraft},
		{"from stock submitted", shared.DocStatusSubmitted, inventory.AvailableActual, SalesOrderFacts{}, DeliveryStatusToDeliver, SalesOrderStatusInProgress},
		{"from stock delivered", shared.DocStatusSubmitted, inventory.AvailableActual, SalesOrderFacts{HasReceipt: true}, DeliveryStatusDelivered, SalesOrderStatusInProgress},
		{"cancelled", shared.DocStatusCancelled, "", SalesOrderFacts{HasReceipt: true}, DeliveryStatusNone, SalesOrderStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
			so.DocStatus = tt.docStatus
			so.FromAvailableStock = tt.fromStock
			require.NoError(t, so.Recompute(testLookup(), testSettings(t), tt.facts))
			assert.Equal(t, tt.want, so.DeliveryStatus)
			assert.Equal(t, tt.status, so.Status)
		})
	}

	t.Run("completed when paid and delivered", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
		so.DocStatus = shared.DocStatusSubmitted
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{PaidAmount: so.TotalAmount, HasReceipt: true}))
		assert.Equal(t, SalesOrderStatusCompleted, so.Status)
	})

	t.Run("cancelled has no payment status", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
		so.DocStatus = shared.DocStatusCancelled
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{PaidAmount: 10}))
		assert.Equal(t, PaymentStatusNone, so.PaymentStatus)
	})
}

func TestSalesOrder_Submit(t *testing.T) {
	so := newOrder(t)
	assert.Error(t, so.Submit())

	so = newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
	require.NoError(t, so.Submit())
	assert.True(t, so.EditCommission)
	assert.True(t, so.IsSubmitted())
	assert.Error(t, so.EnsureDraft())
}

func TestSalesOrder_SplitCombinations(t *testing.T) {
	so := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 2}, ItemLine{ItemCode: "CHAIR", Qty: 1})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
	before := so.ItemsCost

	so.SplitCombinations([]string{"COMBO", "COMBO"})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))

	assert.Equal(t, map[string]int64{"CHAIR": 1, "FRAME": 4, "DOOR": 2}, CountQty(so.Items))
	assert.Empty(t, so.ChildItems)
	assert.Equal(t, before, so.ItemsCost)
}

func TestSalesOrder_ApplyReturn(t *testing.T) {
	so := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 1}, ItemLine{ItemCode: "FRAME", Qty: 1}, ItemLine{ItemCode: "CHAIR", Qty: 2})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))

	so.ApplyReturn([]ItemLine{{ItemCode: "FRAME", Qty: 2}, {ItemCode: "CHAIR", Qty: 2}})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))

	assert.Equal(t, map[string]int64{"FRAME": 1, "DOOR": 1}, CountQty(so.Items))
	assert.Equal(t, int64(5000+7950), so.ItemsCost)
}

func TestSalesOrder_RestoreReturn(t *testing.T) {
	so := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 1}, ItemLine{ItemCode: "CHAIR", Qty: 2})
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
	before := so.ItemsCost

	returned := []ItemLine{{ItemCode: "FRAME", Qty: 1, Rate: 5000}, {ItemCode: "CHAIR", Qty: 2, Rate: 1494}}
	so.ApplyReturn(returned)
	so.RestoreReturn(returned)
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))

	assert.Equal(t, map[string]int64{"FRAME": 2, "DOOR": 1, "CHAIR": 2}, CountQty(so.SplitView()))
	assert.Equal(t, before, so.ItemsCost)
}

func TestPurchaseOrder_EnsureCancellable(t *testing.T) {
	po := NewPurchaseOrder("PO-1")
	require.NoError(t, po.Submit())

	plain := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
	folded := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 1})
	folded.FromAvailableStock = inventory.AvailablePurchased
	folded.FromPurchaseOrderID = &po.ID
	po.LinkSalesOrder(plain.ID)
	po.LinkSalesOrder(folded.ID)
	linked := map[uuid.UUID]*SalesOrder{plain.ID: plain, folded.ID: folded}

	err := po.EnsureCancellable(linked)
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err))
	assert.Contains(t, err.Error(), folded.ID.String())

	folded.DocStatus = shared.DocStatusCancelled
	assert.NoError(t, po.EnsureCancellable(linked))

	other := uuid.New()
	folded.DocStatus = shared.DocStatusSubmitted
	folded.FromPurchaseOrderID = &other
	assert.NoError(t, po.EnsureCancellable(linked))
}

func TestPurchaseOrder_Recompute(t *testing.T) {
	lookup := testLookup()
	so1 := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 2})
	require.NoError(t, so1.Recompute(lookup, testSettings(t), SalesOrderFacts{}))
	so2 := newOrder(t, ItemLine{ItemCode: "COMBO", Qty: 1})
	require.NoError(t, so2.Recompute(lookup, testSettings(t), SalesOrderFacts{}))
	so2.DocStatus = shared.DocStatusCancelled
	linked := map[uuid.UUID]*SalesOrder{so1.ID: so1, so2.ID: so2}

	t.Run("totals exclude cancelled orders", func(t *testing.T) {
		po := NewPurchaseOrder("PO-1")
		po.SalesOrders = []PurchaseOrderSalesOrder{{SalesOrderID: so1.ID}, {SalesOrderID: so2.ID}, {SalesOrderID: so1.ID}}
		po.ItemsToSell = []ItemLine{{ItemCode: "DOOR", Qty: 1}, {ItemCode: "DOOR", Qty: 1}}
		po.DeliveryCost = 300
		require.NoError(t, po.Recompute(lookup, linked))

		assert.Len(t, po.SalesOrders, 2)
		assert.Equal(t, "John", po.SalesOrders[0].Customer)
		assert.Equal(t, int64(2*1494), po.SalesOrderCost)
		assert.Equal(t, int64(2*7950), po.ItemsToSellCost)
		assert.Equal(t, int64(2*1494+2*7950+300), po.TotalAmount)
		assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
	})

	t.Run("empty order", func(t *testing.T) {
		err := NewPurchaseOrder("PO-2").Recompute(lookup, linked)
		require.Error(t, err)
		assert.Equal(t, "Add Sales Orders or Items to Sell", err.Error())
	})

	t.Run("checkout batches", func(t *testing.T) {
		po := NewPurchaseOrder("PO-3")
		po.SalesOrders = []PurchaseOrderSalesOrder{{SalesOrderID: so1.ID}, {SalesOrderID: so2.ID}}
		po.ItemsToSell = []ItemLine{{ItemCode: "COMBO", Qty: 1}}
		require.NoError(t, po.Recompute(lookup, linked))
		reserved, available := po.CheckoutBatches(linked, lookup)
		assert.Equal(t, []inventory.ItemQty{{ItemCode: "CHAIR", Qty: 2}}, reserved)
		assert.Equal(t, []inventory.ItemQty{{ItemCode: "FRAME", Qty: 2}, {ItemCode: "DOOR", Qty: 1}}, available)
	})
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	po := NewPurchaseOrder("PO-1")
	assert.Error(t, po.Cancel())
	assert.Error(t, po.MarkReceived())

	require.NoError(t, po.Submit())
	assert.Equal(t, PurchaseOrderStatusToReceive, po.Status)
	assert.Equal(t, PurchaseStageOrdered, po.PurchaseStage())

	require.NoError(t, po.MarkReceived())
	assert.Equal(t, PurchaseStageReceived, po.PurchaseStage())
	assert.Error(t, po.Cancel())

	po2 := NewPurchaseOrder("PO-2")
	require.NoError(t, po2.Submit())
	require.NoError(t, po2.Cancel())
	assert.Equal(t, PurchaseOrderStatusCancelled, po2.Status)
	assert.Equal(t, PurchaseStageNone, po2.PurchaseStage())
}

func TestPurchaseOrder_TakeItemsToSell(t *testing.T) {
	lookup := testLookup()
	po := NewPurchaseOrder("PO-1")
	po.ItemsToSell = []ItemLine{{ItemCode: "COMBO", Qty: 1}, {ItemCode: "CHAIR", Qty: 1}}

	require.NoError(t, po.TakeItemsToSell([]ItemLine{{ItemCode: "FRAME", Qty: 1}, {ItemCode: "CHAIR", Qty: 1}}, lookup))
	assert.Equal(t, map[string]int64{"FRAME": 1, "DOOR": 1}, CountQty(po.ItemsToSell))

	err := po.TakeItemsToSell([]ItemLine{{ItemCode: "DOOR", Qty: 2}}, lookup)
	require.Error(t, err)
	assert.Equal(t, "Insufficient quantity 2 for Item DOOR: expected not more than 1.", err.Error())

	po.AddItemsToSell([]ItemLine{{ItemCode: "DOOR", Qty: 1}})
	assert.Equal(t, map[string]int64{"FRAME": 1, "DOOR": 2}, CountQty(po.ItemsToSell))
}
