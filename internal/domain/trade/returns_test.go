package trade

import (
	"testing"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submittedOrder(t *testing.T, facts SalesOrderFacts, items ...ItemLine) *SalesOrder {
	so := newOrder(t, items...)
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
	require.NoError(t, so.Submit())
	require.NoError(t, so.Recompute(testLookup(), testSettings(t), facts))
	return so
}

func TestAvailableToAdd(t *testing.T) {
	voucher := []ItemLine{
		{ItemCode: "FRAME", ItemName: "Frame", Qty: 2},
		{ItemCode: "CHAIR", ItemName: "Chair", Qty: 1},
		{ItemCode: "FRAME", ItemName: "Frame", Qty: 1},
		{ItemCode: "DOOR", ItemName: "Door", Qty: 1},
	}
	got := AvailableToAdd(voucher, []ItemLine{{ItemCode: "FRAME", Qty: 1}, {ItemCode: "DOOR", Qty: 1}})
	assert.Equal(t, []ItemLine{
		{ItemCode: "CHAIR", ItemName: "Chair", Qty: 1},
		{ItemCode: "FRAME", ItemName: "Frame", Qty: 2},
	}, got)
	assert.Equal(t, int64(2), voucher[0].Qty, "input must not be modified")
}

func TestValidateReturnItems(t *testing.T) {
	available := []ItemLine{{ItemCode: "CHAIR", Qty: 2}}
	tests := []struct {
		name      string
		requested []ItemLine
		msg       string
	}{
		{"within bound", []ItemLine{{ItemCode: "CHAIR", Qty: 2}}, ""},
		{"too many", []ItemLine{{ItemCode: "CHAIR", Qty: 3}}, "Insufficient quantity 3 for Item CHAIR: expected not more than 2."},
		{"split over lines", []ItemLine{{ItemCode: "CHAIR", Qty: 1}, {ItemCode: "CHAIR", Qty: 2}}, "Insufficient quantity 2 for Item CHAIR: expected not more than 1."},
		{"unknown item", []ItemLine{{ItemCode: "SOFA", Qty: 1}}, "Insufficient quantity 1 for Item SOFA: expected not more than 0."},
		{"zero", []ItemLine{{ItemCode: "CHAIR", Qty: 0}}, "Insufficient quantity 0 for Item CHAIR: expected not more than 2."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReturnItems(available, tt.requested)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, shared.IsValidationError(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestSalesReturn_Validate(t *testing.T) {
	t.Run("order must be submitted", func(t *testing.T) {
		so := newOrder(t, ItemLine{ItemCode: "CHAIR", Qty: 2})
		require.NoError(t, so.Recompute(testLookup(), testSettings(t), SalesOrderFacts{}))
		r := NewSalesReturn(so.ID)
		r.Items = []ItemLine{{ItemCode: "CHAIR", Qty: 1}}
		err := r.Validate(so)
		require.Error(t, err)
		assert.Equal(t, "Sales Order should be submitted", err.Error())
	})

	t.Run("order must be purchased", func(t *testing.T) {
		so := submittedOrder(t, SalesOrderFacts{}, ItemLine{ItemCode: "CHAIR", Qty: 2})
		r := NewSalesReturn(so.ID)
		r.Items = []ItemLine{{ItemCode: "CHAIR", Qty: 1}}
		err := r.Validate(so)
		require.Error(t, err)
		assert.Equal(t, "Delivery Status should be Purchased, To Deliver or Delivered", err.Error())
	})

	t.Run("can't return all items", func(t *testing.T) {
		so := submittedOrder(t, SalesOrderFacts{PurchaseStage: PurchaseStageOrdered}, ItemLine{ItemCode: "COMBO", Qty: 1})
		r := NewSalesReturn(so.ID)
		r.Items = []ItemLine{{ItemCode: "FRAME", Qty: 2}, {ItemCode: "DOOR", Qty: 1}}
		err := r.Validate(so)
		require.Error(t, err)
		assert.Equal(t, "Can't return all items", err.Error())

		r.SystemGenerated = true
		assert.NoError(t, r.Validate(so))

		spawned := NewSalesReturn(so.ID)
		prID := uuid.New()
		spawned.FromPurchaseReturnID = &prID
		spawned.Items = []ItemLine{{ItemCode: "FRAME", Qty: 2}, {ItemCode: "DOOR", Qty: 1}}
		assert.NoError(t, spawned.Validate(so))
	})

	t.Run("bound", func(t *testing.T) {
		so := submittedOrder(t, SalesOrderFacts{PurchaseStage: PurchaseStageOrdered}, ItemLine{ItemCode: "COMBO", Qty: 1})
		r := NewSalesReturn(so.ID)
		r.Items = []ItemLine{{ItemCode: "FRAME", Qty: 3}}
		err := r.Validate(so)
		require.Error(t, err)
		assert.Equal(t, "Insufficient quantity 3 for Item FRAME: expected not more than 2.", err.Error())
	})
}

func TestSalesReturn_AddItems(t *testing.T) {
	so := submittedOrder(t, SalesOrderFacts{PurchaseStage: PurchaseStageOrdered}, ItemLine{ItemCode: "COMBO", Qty: 1}, ItemLine{ItemCode: "CHAIR", Qty: 1})
	r := NewSalesReturn(so.ID)
	available := r.AvailableToAdd(so)
	BackfillFromCatalog(available, testLookup())
	require.Len(t, available, 3)
	assert.Equal(t, "Chair", available[0].ItemName)

	require.NoError(t, r.AddItems(available, []ItemLine{{ItemCode: "FRAME", Qty: 1}}))
	require.Len(t, r.Items, 1)
	assert.Equal(t, int64(5000), r.Items[0].Rate)
	assert.Equal(t, int64(5000), r.TotalAmount())

	available = r.AvailableToAdd(so)
	err := r.AddItems(available, []ItemLine{{ItemCode: "FRAME", Qty: 2}})
	require.Error(t, err)
	assert.Equal(t, "Insufficient quantity 2 for Item FRAME: expected not more than 1.", err.Error())
}

func TestSalesReturn_Misc(t *testing.T) {
	r := NewSalesReturn(uuid.New())
	r.CalculateReturnedPaidAmount(1000, 1200)
	assert.Equal(t, int64(0), r.ReturnedPaidAmount)
	r.CalculateReturnedPaidAmount(1000, 700)
	assert.Equal(t, int64(300), r.ReturnedPaidAmount)

	err := r.Cancel()
	require.Error(t, err)
	assert.Equal(t, "Not allowed to cancel Return", err.Error())
}

func TestSalesReturnStockMove(t *testing.T) {
	tests := []struct {
		status DeliveryStatus
		want   StockMove
	}{
		{DeliveryStatusPurchased, StockMove{From: inventory.ReservedPurchased, To: inventory.AvailablePurchased}},
		{DeliveryStatusToDeliver, StockMove{From: inventory.ReservedActual, To: inventory.AvailableActual}},
		{DeliveryStatusDelivered, StockMove{To: inventory.AvailableActual}},
	}
	for _, tt := range tests {
		got, err := SalesReturnStockMove(tt.status)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := SalesReturnStockMove(DeliveryStatusToPurchase)
	assert.Error(t, err)
}

func TestPurchaseReturn(t *testing.T) {
	po := NewPurchaseOrder("PO-1")
	lines := []ItemLine{{ItemCode: "CHAIR", Qty: 2, Rate: 1494}}

	r := NewPurchaseReturn(po.ID)
	r.Items = []ItemLine{{ItemCode: "CHAIR", Qty: 1, Rate: 1494}}

	err := r.Validate(po, lines)
	require.Error(t, err)
	assert.Equal(t, "Purchase Order should be submitted", err.Error())

	require.NoError(t, po.Submit())
	require.NoError(t, r.Validate(po, lines))
	assert.Equal(t, int64(1494), r.ReturnedPaidAmount)

	r.Items = []ItemLine{{ItemCode: "CHAIR", Qty: 2, Rate: 1494}}
	err = r.Validate(po, lines)
	require.Error(t, err)
	assert.Equal(t, "Can't return all items", err.Error())

	require.NoError(t, po.MarkReceived())
	err = r.Cancel(po)
	require.Error(t, err)
	assert.Equal(t, "Allowed to cancel Purchase Return only if status of Order is To Receive", err.Error())

	cancelled := NewPurchaseOrder("PO-2")
	require.NoError(t, cancelled.Submit())
	require.NoError(t, cancelled.Cancel())
	err = NewPurchaseReturn(cancelled.ID).ValidateVoucher(cancelled)
	require.Error(t, err)
	assert.Equal(t, "Purchase Order should be submitted", err.Error())
}

func TestPurchaseReturn_ItemsToSellShare(t *testing.T) {
	r := NewPurchaseReturn(uuid.New())
	r.Items = []ItemLine{
		{ItemCode: "CHAIR", Qty: 3, Rate: 1494},
		{ItemCode: "DOOR", Qty: 1, Rate: 7950},
	}
	spawned := []SalesReturn{
		{Items: []ItemLine{{ItemCode: "CHAIR", Qty: 1}}},
		{Items: []ItemLine{{ItemCode: "CHAIR", Qty: 1}, {ItemCode: "DOOR", Qty: 1}}},
	}

	share := r.ItemsToSellShare(spawned)
	require.Len(t, share, 1)
	assert.Equal(t, "CHAIR", share[0].ItemCode)
	assert.Equal(t, int64(1), share[0].Qty)
	assert.Equal(t, int64(1494), share[0].Rate)

	assert.Empty(t, r.ItemsToSellShare([]SalesReturn{{Items: r.Items}}))
	assert.Equal(t, map[string]int64{"CHAIR": 3, "DOOR": 1}, CountQty(r.ItemsToSellShare(nil)))
}

func TestAllocateReturn(t *testing.T) {
	so1, so2 := uuid.New(), uuid.New()
	pool := []SourcedLines{
		{SalesOrderID: uuid.Nil, Lines: []ItemLine{{ItemCode: "CHAIR", Qty: 1, Rate: 10}}},
		{SalesOrderID: so1, Lines: []ItemLine{{ItemCode: "CHAIR", Qty: 2, Rate: 10}, {ItemCode: "DOOR", Qty: 1, Rate: 20}}},
		{SalesOrderID: so2, Lines: []ItemLine{{ItemCode: "DOOR", Qty: 3, Rate: 20}}},
	}

	got := AllocateReturn([]ItemLine{{ItemCode: "CHAIR", Qty: 2}, {ItemCode: "DOOR", Qty: 2}}, pool)

	assert.Equal(t, []ItemLine{{ItemCode: "CHAIR", Qty: 1, Rate: 10}}, got.ItemsToSell)
	require.Len(t, got.SalesOrders, 2)
	assert.Equal(t, so1, got.SalesOrders[0].SalesOrderID)
	assert.Equal(t, []ItemLine{{ItemCode: "CHAIR", Qty: 1, Rate: 10}, {ItemCode: "DOOR", Qty: 1, Rate: 20}}, got.SalesOrders[0].Items)
	assert.Equal(t, so2, got.SalesOrders[1].SalesOrderID)
	assert.Equal(t, []ItemLine{{ItemCode: "DOOR", Qty: 1, Rate: 20}}, got.SalesOrders[1].Items)

	assert.Len(t, FlattenPool(pool), 4)
}
