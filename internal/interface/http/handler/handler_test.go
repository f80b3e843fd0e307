package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/meatshop/internal/application/cart"
	apporder "github.com/xiebiao/meatshop/internal/application/order"
	appproduct "github.com/xiebiao/meatshop/internal/application/product"
	appuser "github.com/xiebiao/meatshop/internal/application/user"
	"github.com/xiebiao/meatshop/internal/domain/product"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	"github.com/xiebiao/meatshop/pkg/clock"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/jwt"
	"github.com/xiebiao/meatshop/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noBlacklist struct{}

func (noBlacklist) IsInBlacklist(context.Context, string) (bool, error) { return false, nil }

type stubProducts struct {
	list []*product.Product
}

func (s stubProducts) FindByID(context.Context, uint) (*product.Product, error) {
	return nil, product.ErrProductNotFound
}

func (s stubProducts) LockByID(context.Context, uint) (*product.Product, error) {
	return nil, product.ErrProductNotFound
}

func (s stubProducts) List(_ context.Context, p product.ListParams) ([]*product.Product, int64, error) {
	return s.list, int64(len(s.list)), nil
}

type noCache struct{}

func (noCache) GetJSON(string, interface{}) (bool, error) { return false, nil }
func (noCache) SetJSON(string, interface{}) error         { return nil }

type testServer struct {
	engine  *gin.Engine
	manager *jwt.Manager
}

// newTestServer 路由与生产一致；只有不触达存储的分支会被调用，仓储传nil
func newTestServer(products []*product.Product) *testServer {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	auth := middleware.NewAuthMiddleware(manager, noBlacklist{})
	clk := clock.NewFixed(time.Date(2025, 10, 21, 12, 0, 0, 0, time.UTC))

	orders := NewOrderHandler(
		apporder.NewCreateOrderUseCase(nil, nil, nil, nil, nil, nil, nil, clk, 3, zap.NewNop()),
		apporder.NewGetOrderUseCase(nil, nil, time.UTC, zap.NewNop()),
		apporder.NewListOrdersUseCase(nil, time.UTC),
		apporder.NewUpdateStatusUseCase(nil, nil, nil, nil, clk, zap.NewNop()),
	)
	catalog := NewCatalogHandler(
		appproduct.NewListProductsUseCase(stubProducts{list: products}, noCache{}, zap.NewNop()),
		appcart.NewAddToCartUseCase(nil, nil),
		appcart.NewListCartUseCase(nil, nil),
		appcart.NewClearCartUseCase(nil),
	)
	users := NewUserHandler(nil, appuser.NewRefreshTokenUseCase(nil, manager), appuser.NewLogoutUseCase(nil, manager))

	r := gin.New()
	r.GET("/products", catalog.ListProducts)
	r.GET("/order-numbers/:order_no", orders.InspectOrderNumber)
	r.POST("/sessions/refresh", users.RefreshToken)
	r.DELETE("/sessions/unauthenticated", users.Logout)

	authed := r.Group("", auth.RequireAuth())
	authed.POST("/orders", orders.CreateOrder)
	authed.GET("/orders/:order_no", orders.GetOrder)
	authed.PUT("/admin/orders/:order_no/status", orders.UpdateStatus)
	authed.POST("/cart/items", catalog.AddToCart)

	return &testServer{engine: r, manager: manager}
}

func (s *testServer) token(t *testing.T, isAdmin bool) string {
	pair, err := s.manager.GenerateToken(jwt.Identity{UserID: 7, TelegramID: 1007, IsAdmin: isAdmin})
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(method, path, token string, body interface{}) response.Response {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func TestInspectOrderNumber(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodGet, "/order-numbers/ORD-20251021-0042", "", nil)
	assert.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "2025-10-21", data["issue_date"])
	assert.Equal(t, float64(42), data["sequence"])

	resp = s.do(http.MethodGet, "/order-numbers/ORD-2025-1", "", nil)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, false, resp.Data.(map[string]interface{})["valid"])
}

func TestCreateOrder_Validation(t *testing.T) {
	s := newTestServer(nil)
	token := s.token(t, false)

	t.Run("未登录", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/orders", "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
	})

	t.Run("缺少字段", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/orders", token, map[string]string{"payment_method": "cash"})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})

	t.Run("不支持的支付方式", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/orders", token, map[string]string{
			"delivery_address": "г. Москва, ул. Ленина, д. 1",
			"delivery_phone":   "+79123456789",
			"payment_method":   "bitcoin",
		})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})

	t.Run("手机号不合法", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/orders", token, map[string]string{
			"delivery_address": "г. Москва, ул. Ленина, д. 1",
			"delivery_phone":   "123",
			"payment_method":   "cash",
		})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
		assert.Equal(t, "手机号格式不正确", resp.Message)
	})
}

func TestGetOrder_InvalidNumber(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodGet, "/orders/ORD-20251021-0000", s.token(t, false), nil)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	assert.Equal(t, "订单号格式不正确", resp.Message)
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	s := newTestServer(nil)
	body := map[string]string{"status": "confirmed"}

	resp := s.do(http.MethodPut, "/admin/orders/ORD-20251021-0001/status", s.token(t, false), body)
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)

	resp = s.do(http.MethodPut, "/admin/orders/ORD-20251021-0001/status", s.token(t, true), map[string]string{})
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	resp = s.do(http.MethodPut, "/admin/orders/ORD-20251021-0001/status", s.token(t, true), map[string]string{"status": "lost"})
	assert.Equal(t, apperrors.ErrCodeInvalidOrderStatus, resp.Code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer([]*product.Product{
		{ID: 1, Name: "Говядина", Unit: "кг", Price: 89000, IsActive: true, IsAvailable: true},
	})

	resp := s.do(http.MethodGet, "/products?page=1&page_size=5", "", nil)
	require.Equal(t, 0, resp.Code)
	page := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, float64(5), page["page_size"])

	list := page["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "890.00", list[0].(map[string]interface{})["price_rub"])

	resp = s.do(http.MethodGet, "/products?page_size=1000", "", nil)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
}

func TestAddToCart_Validation(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodPost, "/cart/items", s.token(t, false), map[string]int{"product_id": 1, "quantity": 0})
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
}

func TestSessions(t *testing.T) {
	s := newTestServer(nil)

	resp := s.do(http.MethodPost, "/sessions/refresh", "", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)

	resp = s.do(http.MethodDelete, "/sessions/unauthenticated", "", nil)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
}
