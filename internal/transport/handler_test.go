package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderdesk-be/internal/apperror"
	"orderdesk-be/internal/auth"
	"orderdesk-be/internal/middleware"
	"orderdesk-be/internal/order"
	"orderdesk-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, businessID uuid.UUID, actorID string, req order.Request) (*order.Order, error) {
	args := m.Called(ctx, businessID, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, businessID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, businessID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, q order.Query) ([]*order.Order, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, q product.Query) ([]*product.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorResponse  `json:"error"`
}

type testServer struct {
	svc      *MockOrderService
	products *MockProductService
	tokens   *auth.TokenManager
	handler  http.Handler
	health   error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimiter(t, nil)
}

func newTestServerWithLimiter(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	ts := &testServer{
		svc:      new(MockOrderService),
		products: new(MockProductService),
		tokens:   auth.NewTokenManager("test-secret"),
	}
	ts.handler = NewRouter(RouterDeps{
		Orders:   NewOrderHandler(ts.svc),
		Products: NewProductHandler(ts.products),
		Tokens:   ts.tokens,
		Limiter:  limiter,
		Health:   func(context.Context) error { return ts.health },
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, businessID string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if businessID != "" {
		token, err := ts.tokens.Sign("staff-1", businessID, "STAFF", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func sampleOrder(businessID uuid.UUID) *order.Order {
	email := "jane@example.com"
	return &order.Order{
		ID:            uuid.New(),
		BusinessID:    businessID,
		OrderNumber:   "WO-000007",
		Status:        order.StatusPending,
		Type:          order.TypeDelivery,
		CustomerID:    uuid.New(),
		CustomerName:  "Jane",
		CustomerPhone: "555-000-1111",
		CustomerEmail: &email,
		Subtotal:      decimal.RequireFromString("55"),
		DeliveryFee:   decimal.RequireFromString("4"),
		Total:         decimal.RequireFromString("59"),
		PaymentStatus: order.PaymentPending,
		CreatedBy:     "staff-1",
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Items: []order.Item{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Pizza", Quantity: 3,
				UnitPrice: decimal.RequireFromString("10"), LineTotal: decimal.RequireFromString("30")},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	businessID := uuid.New()
	path := "/v1/businesses/" + businessID.String() + "/orders"
	productID := uuid.New()
	body := map[string]any{
		"orderType":       "DELIVERY",
		"items":           []map[string]any{{"productId": productID, "quantity": 3}},
		"newCustomer":     map[string]any{"name": "Jane", "phone": "555-000-1111"},
		"deliveryAddress": map[string]any{"street": "Main St 1"},
		"deliveryFee":     "4.00",
	}

	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		created := sampleOrder(businessID)
		ts.svc.On("CreateOrder", mock.Anything, businessID, "staff-1", mock.MatchedBy(func(req order.Request) bool {
			return len(req.Items) == 1 && req.Items[0].ProductID == productID &&
				req.NewCustomer != nil && req.NewCustomer.Name == "Jane" &&
				req.DeliveryFee != nil && req.DeliveryFee.Equal(decimal.RequireFromString("4"))
		})).Return(created, nil)

		w, env := ts.do(t, http.MethodPost, path, businessID.String(), body)

		require.Equal(t, http.StatusCreated, w.Code)
		var summary OrderSummary
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, "WO-000007", summary.OrderNumber)
		assert.Equal(t, "59.00", summary.Total)
		assert.Equal(t, order.StatusPending, summary.Status)
		assert.Equal(t, "Jane", summary.Customer.Name)
		assert.Equal(t, "jane@example.com", *summary.Customer.Email)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		ts.svc.AssertExpectations(t)
	})

	t.Run("error kinds map to status", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			code   string
		}{
			{apperror.ValidationField("items", "at least one item is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
			{apperror.NotFound("product", "x"), http.StatusNotFound, "NOT_FOUND"},
			{apperror.Conflict("insufficient stock"), http.StatusConflict, "CONFLICT"},
			{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		}
		for _, tt := range tests {
			ts := newTestServer(t)
			ts.svc.On("CreateOrder", mock.Anything, businessID, "staff-1", mock.Anything).Return(nil, tt.err)

			w, env := ts.do(t, http.MethodPost, path, businessID.String(), body)

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
			assert.NotContains(t, env.Error.Message, "connection refused")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t)

		w, env := ts.do(t, http.MethodPost, path, businessID.String(), `{"orderType":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		ts.svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown field", func(t *testing.T) {
		ts := newTestServer(t)

		w, _ := ts.do(t, http.MethodPost, path, businessID.String(), `{"orderType":"PICKUP","coupon":"X"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		ts := newTestServer(t)

		w, env := ts.do(t, http.MethodPost, path, "", body)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("other business", func(t *testing.T) {
		ts := newTestServer(t)

		w, _ := ts.do(t, http.MethodPost, path, uuid.NewString(), body)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetOrder(t *testing.T) {
	businessID := uuid.New()
	ts := newTestServer(t)
	o := sampleOrder(businessID)

	t.Run("found", func(t *testing.T) {
		ts.svc.On("GetOrder", mock.Anything, businessID, o.ID).Return(o, nil).Once()

		w, env := ts.do(t, http.MethodGet, "/v1/businesses/"+businessID.String()+"/orders/"+o.ID.String(), businessID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var detail OrderDetail
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, "55.00", detail.Subtotal)
		assert.Equal(t, "4.00", detail.DeliveryFee)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, "10.00", detail.Items[0].UnitPrice)
		assert.NotNil(t, detail.Items[0].ModifierIDs)
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		ts.svc.On("GetOrder", mock.Anything, businessID, missing).
			Return(nil, apperror.NotFound("order", missing.String())).Once()

		w, env := ts.do(t, http.MethodGet, "/v1/businesses/"+businessID.String()+"/orders/"+missing.String(), businessID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w, env := ts.do(t, http.MethodGet, "/v1/businesses/"+businessID.String()+"/orders/nope", businessID.String(), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "orderID", env.Error.Field)
	})
}

func TestListOrders(t *testing.T) {
	businessID := uuid.New()
	base := "/v1/businesses/" + businessID.String() + "/orders"

	t.Run("status filter with paging", func(t *testing.T) {
		ts := newTestServer(t)
		want := order.ByStoreAndStatus{BusinessID: businessID, Status: order.StatusPending, Limit: 10, Offset: 20}
		ts.svc.On("ListOrders", mock.Anything, want).Return([]*order.Order{sampleOrder(businessID)}, nil)

		w, env := ts.do(t, http.MethodGet, base+"?status=pending&limit=10&page=3", businessID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var list []OrderSummary
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Len(t, list, 1)
	})

	t.Run("search term wins", func(t *testing.T) {
		ts := newTestServer(t)
		want := order.BySearchTerm{BusinessID: businessID, Term: "jane", Limit: order.DefaultLimit, Offset: 0}
		ts.svc.On("ListOrders", mock.Anything, want).Return([]*order.Order{}, nil)

		w, _ := ts.do(t, http.MethodGet, base+"?q=jane&status=READY", businessID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		ts.svc.AssertExpectations(t)
	})

	t.Run("invalid params", func(t *testing.T) {
		ts := newTestServer(t)
		for _, query := range []string{"?status=LOST", "?limit=0", "?page=x"} {
			w, _ := ts.do(t, http.MethodGet, base+query, businessID.String(), nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	ts.health = errors.New("pq: password authentication failed for user \"orderdesk\"")
	w, _ = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"down"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestListProducts(t *testing.T) {
	businessID := uuid.New()
	base := "/v1/businesses/" + businessID.String() + "/products"

	t.Run("status filter with paging", func(t *testing.T) {
		ts := newTestServer(t)
		original := decimal.RequireFromString("12")
		want := product.ByStoreAndStatus{BusinessID: businessID, Status: product.StatusActive, Limit: 5, Offset: 5}
		ts.products.On("ListProducts", mock.Anything, want).Return([]*product.Product{{
			ID: uuid.New(), Name: "Pizza", Price: decimal.RequireFromString("10"), OriginalPrice: &original,
			Stock: 4, TrackInventory: true, Status: product.StatusActive,
			Modifiers: []product.Modifier{{ID: uuid.New(), Name: "Extra cheese", PriceDelta: decimal.RequireFromString("1.5")}},
		}}, nil)

		w, env := ts.do(t, http.MethodGet, base+"?status=active&limit=5&page=2", businessID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var list []ProductView
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, "10.00", list[0].Price)
		assert.Equal(t, "12.00", *list[0].OriginalPrice)
		require.Len(t, list[0].Modifiers, 1)
		assert.Equal(t, "1.50", list[0].Modifiers[0].PriceDelta)
		ts.products.AssertExpectations(t)
	})

	t.Run("search term wins", func(t *testing.T) {
		ts := newTestServer(t)
		want := product.BySearchTerm{BusinessID: businessID, Term: "marg", Limit: product.DefaultLimit, Offset: 0}
		ts.products.On("ListProducts", mock.Anything, want).Return([]*product.Product{}, nil)

		w, env := ts.do(t, http.MethodGet, base+"?q=marg&status=INACTIVE", businessID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(env.Data))
		ts.products.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		ts := newTestServer(t)

		w, env := ts.do(t, http.MethodGet, base+"?status=ARCHIVED", businessID.String(), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "status", env.Error.Field)
		ts.products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("requires token", func(t *testing.T) {
		ts := newTestServer(t)

		w, _ := ts.do(t, http.MethodGet, base, "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitIsPerActor(t *testing.T) {
	businessID := uuid.New()
	path := "/v1/businesses/" + businessID.String() + "/products"
	ts := newTestServerWithLimiter(t, middleware.NewRateLimiter(0.001, 1))
	ts.products.On("ListProducts", mock.Anything, mock.Anything).Return([]*product.Product{}, nil)

	send := func(actorID, device string) int {
		token, err := ts.tokens.Sign(actorID, businessID.String(), "STAFF", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Device-ID", device)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("staff-1", "a"))
	assert.Equal(t, http.StatusTooManyRequests, send("staff-1", "b"))
	assert.Equal(t, http.StatusOK, send("staff-2", "a"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_in_flight")
}
