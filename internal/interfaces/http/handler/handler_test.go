package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	appcatalog "github.com/comfort/backend/internal/application/catalog"
	appfinance "github.com/comfort/backend/internal/application/finance"
	appinventory "github.com/comfort/backend/internal/application/inventory"
	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/comfort/backend/internal/infrastructure/persistence"
	"github.com/comfort/backend/internal/interfaces/http/dto"
	"github.com/comfort/backend/internal/interfaces/http/handler"
	"github.com/comfort/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

// newTestAPI serves every handler against a fresh sqlite database
func newTestAPI(t *testing.T, checks map[string]handler.Pinger) *testAPI {
	t.Helper()
	ctx := context.Background()

	database, err := persistence.NewSQLiteDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	ledger := appfinance.NewLedger(persistence.NewGormAccountRepository(db), persistence.NewGormGLEntryRepository(db), nil, nil)
	require.NoError(t, ledger.InitializeAccounts(ctx, finance.DefaultChart))

	items := persistence.NewGormItemRepository(db)
	for _, it := range []*catalog.Item{
		{Code: "CHAIR", Name: "Chair", Rate: 1494, Weight: 5},
		{Code: "TABLE", Name: "Table", Rate: 5000, Weight: 25},
	} {
		require.NoError(t, items.Save(ctx, it))
	}
	brackets := persistence.NewGormBracketStore(db)
	require.NoError(t, brackets.Save(ctx, []pricing.CommissionRange{
		{ToAmount: 100, Percentage: 20},
		{ToAmount: 200, Percentage: 15},
		{ToAmount: 0, Percentage: 10},
	}))

	deps := apptrade.Dependencies{
		Scope:    persistence.NewGormTransactionScope(db),
		Catalog:  items,
		Brackets: brackets,
	}
	stock := appinventory.NewStock(persistence.NewGormStockEntryRepository(db), nil, nil)

	if checks == nil {
		checks = map[string]handler.Pinger{"database": handler.PingFunc(database.Ping)}
	}

	engine, err := router.NewEngine(router.EngineOptions{HTTP: config.HTTPConfig{}, Logger: zap.NewNop()})
	require.NoError(t, err)
	router.NewRouter(engine).Register(
		handler.NewSalesOrderHandler(apptrade.NewSalesOrderService(deps)),
		handler.NewPurchaseOrderHandler(apptrade.NewPurchaseOrderService(deps)),
		handler.NewSalesReturnHandler(apptrade.NewSalesReturnService(deps)),
		handler.NewPurchaseReturnHandler(apptrade.NewPurchaseReturnService(deps)),
		handler.NewFinanceHandler(ledger, stock),
		handler.NewCatalogHandler(
			appcatalog.NewItemService(items, nil),
			appcatalog.NewCommissionService(brackets, nil),
		),
		handler.NewSystemHandler("test", checks),
	).Setup()

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path string, body any) (int, apiResponse) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decode[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func chairOrder() apptrade.SalesOrderRequest {
	return apptrade.SalesOrderRequest{
		Customer: "John",
		Items:    []apptrade.ItemInput{{ItemCode: "CHAIR", Qty: 1}},
	}
}

func TestSalesOrderHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodPost, "/sales-orders", chairOrder())
	require.Equal(t, http.StatusCreated, code)
	so := decode[apptrade.SalesOrderResponse](t, resp)
	assert.Equal(t, "Draft", so.Status)
	assert.Equal(t, int64(10), so.Commission)
	assert.Equal(t, int64(146), so.Margin)

	code, resp = api.do(http.MethodPost, "/sales-orders/"+so.ID.String()+"/payments", apptrade.AddPaymentRequest{Amount: 100})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/sales-orders/"+so.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	so = decode[apptrade.SalesOrderResponse](t, resp)
	assert.Equal(t, "In Progress", so.Status)
	assert.Equal(t, "To Purchase", so.DeliveryStatus)

	code, resp = api.do(http.MethodPost, "/sales-orders/"+so.ID.String()+"/payments", apptrade.AddPaymentRequest{Amount: 100, PaidWithCash: true})
	require.Equal(t, http.StatusCreated, code)
	payment := decode[apptrade.PaymentResponse](t, resp)
	assert.Equal(t, "Submitted", payment.DocStatus)
	assert.Equal(t, so.ID, payment.VoucherNo)

	code, resp = api.do(http.MethodGet, "/sales-orders/"+so.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	so = decode[apptrade.SalesOrderResponse](t, resp)
	assert.Equal(t, int64(100), so.PaidAmount)
	assert.Equal(t, "Partially Paid", so.PaymentStatus)

	code, resp = api.do(http.MethodGet, "/finance/accounts/Cash/balance", nil)
	require.Equal(t, http.StatusOK, code)
	balance := decode[handler.AccountBalanceResponse](t, resp)
	assert.Equal(t, int64(100), balance.Balance)

	code, resp = api.do(http.MethodGet, "/finance/trial-balance", nil)
	require.Equal(t, http.StatusOK, code)
	trial := decode[handler.TrialBalanceResponse](t, resp)
	assert.Zero(t, trial.Total)
	assert.True(t, trial.Balanced)
}

func TestSalesOrderHandler_Calculate(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodPost, "/sales-orders/calculate", chairOrder())
	require.Equal(t, http.StatusOK, code)
	preview := decode[apptrade.SalesOrderResponse](t, resp)
	assert.Equal(t, int64(10), preview.Commission)
	assert.Equal(t, int64(146), preview.Margin)
}

func TestSalesOrderHandler_Errors(t *testing.T) {
	api := newTestAPI(t, nil)

	t.Run("malformed id", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/sales-orders/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "Invalid id format", resp.Error.Message)
	})

	t.Run("unknown order", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/sales-orders/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("missing customer", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/sales-orders", apptrade.SalesOrderRequest{
			Items: []apptrade.ItemInput{{ItemCode: "CHAIR", Qty: 1}},
		})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "customer", resp.Error.Details[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/sales-orders", `{"customer":`)
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("unknown item", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/sales-orders", apptrade.SalesOrderRequest{
			Customer: "John",
			Items:    []apptrade.ItemInput{{ItemCode: "SOFA", Qty: 1}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})
}

func TestPurchaseOrderHandler_SubmitWithoutBody(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodPost, "/purchase-orders", apptrade.PurchaseOrderRequest{
		Name:        "Stock",
		ItemsToSell: []apptrade.ItemInput{{ItemCode: "TABLE", Qty: 2}},
	})
	require.Equal(t, http.StatusCreated, code)
	po := decode[apptrade.PurchaseOrderResponse](t, resp)
	assert.Equal(t, int64(10000), po.TotalAmount)

	code, resp = api.do(http.MethodPost, "/purchase-orders/"+po.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	po = decode[apptrade.PurchaseOrderResponse](t, resp)
	assert.Equal(t, "To Receive", po.Status)

	code, _ = api.do(http.MethodPost, "/purchase-orders/"+po.ID.String()+"/receipts", nil)
	require.Equal(t, http.StatusCreated, code)

	code, resp = api.do(http.MethodGet, "/stock/Available%20Actual", nil)
	require.Equal(t, http.StatusOK, code)
	bucket := decode[handler.StockBalanceResponse](t, resp)
	assert.Equal(t, "Available Actual", bucket.StockType)
	assert.Equal(t, []handler.StockLineResponse{{ItemCode: "TABLE", Qty: 2}}, bucket.Items)

	code, resp = api.do(http.MethodGet, "/stock", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]handler.StockBalanceResponse](t, resp), 4)

	code, _ = api.do(http.MethodGet, "/stock/Warehouse", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestSalesReturnHandler_CancelIsRejected(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodPost, "/sales-orders", chairOrder())
	require.Equal(t, http.StatusCreated, code)
	so := decode[apptrade.SalesOrderResponse](t, resp)

	code, resp = api.do(http.MethodPost, "/sales-returns", handler.CreateSalesReturnRequest{SalesOrderID: so.ID})
	require.Equal(t, http.StatusCreated, code)
	ret := decode[apptrade.SalesReturnResponse](t, resp)

	code, resp = api.do(http.MethodPost, "/sales-returns/"+ret.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Not allowed to cancel Return", resp.Error.Message)
}

func TestFinanceHandler_AccountQueries(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodGet, "/finance/accounts?from=2024-01-01&to=2024-12-31", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, resp.Data)

	code, resp = api.do(http.MethodGet, "/finance/accounts?from=01/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)

	code, resp = api.do(http.MethodGet, "/finance/accounts/Nowhere/balance", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Account Nowhere not found", resp.Error.Message)
}

func TestCatalogHandler(t *testing.T) {
	api := newTestAPI(t, nil)

	code, resp := api.do(http.MethodPut, "/items", appcatalog.SaveItemRequest{
		Code: "SET",
		Name: "Dining Set",
		Rate: 9000,
		Children: []appcatalog.ChildItemInput{
			{ItemCode: "TABLE", Qty: 1},
			{ItemCode: "CHAIR", Qty: 4},
		},
	})
	require.Equal(t, http.StatusOK, code)
	item := decode[appcatalog.ItemResponse](t, resp)
	require.Len(t, item.Children, 2)
	names := map[string]string{}
	for _, ch := range item.Children {
		names[ch.ItemCode] = ch.ItemName
	}
	assert.Equal(t, map[string]string{"TABLE": "Table", "CHAIR": "Chair"}, names)

	code, resp = api.do(http.MethodGet, "/items/SET", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Dining Set", decode[appcatalog.ItemResponse](t, resp).Name)

	code, _ = api.do(http.MethodGet, "/items/SOFA", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = api.do(http.MethodGet, "/commission", nil)
	require.Equal(t, http.StatusOK, code)
	table := decode[appcatalog.CommissionResponse](t, resp)
	assert.Len(t, table.Ranges, 3)

	code, _ = api.do(http.MethodPut, "/commission", appcatalog.SaveCommissionRequest{
		Ranges: []appcatalog.CommissionRangeInput{{ToAmount: 0, Percentage: 120}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		api := newTestAPI(t, nil)
		code, resp := api.do(http.MethodGet, "/system/ready", nil)
		require.Equal(t, http.StatusOK, code)
		ready := decode[handler.ReadinessResponse](t, resp)
		assert.True(t, ready.Ready)
		assert.Equal(t, "ok", ready.Checks["database"])
	})

	t.Run("failing check", func(t *testing.T) {
		api := newTestAPI(t, map[string]handler.Pinger{
			"redis": handler.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
			"cache": nil,
		})
		code, resp := api.do(http.MethodGet, "/system/ready", nil)
		require.Equal(t, http.StatusServiceUnavailable, code)
		ready := decode[handler.ReadinessResponse](t, resp)
		assert.False(t, ready.Ready)
		assert.Equal(t, "connection refused", ready.Checks["redis"])
		assert.NotContains(t, ready.Checks, "cache")
	})

	t.Run("info", func(t *testing.T) {
		api := newTestAPI(t, nil)
		code, resp := api.do(http.MethodGet, "/system/info", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "test", decode[handler.SystemInfoResponse](t, resp).Version)
	})
}
