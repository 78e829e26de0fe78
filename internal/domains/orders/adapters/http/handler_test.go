package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermemory "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/memory"
	orderapp "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application"
	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/auth"
)

type counterIDs struct{ n int }

func (c *counterIDs) NewOrderID() string {
	c.n++
	return "ORD-" + string(rune('A'+c.n-1))
}

type testServer struct {
	router *gin.Engine
	repo   *ordermemory.Repository
}

func newTestServer(t *testing.T, workflows ports.WorkflowOrchestrator) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := ordermemory.NewRepository()
	catalog := ordermemory.NewCatalog()
	catalog.PutShippingMethod(ports.ShippingMethod{ID: "inside-dhaka", Name: "Inside Dhaka", Charge: domain.MustMoney("60")})
	catalog.PutProduct(ports.ProductSnapshot{ID: "p1", Name: "Panjabi", Slug: "panjabi", Price: domain.MustMoney("1200"), Discount: domain.MustMoney("100"), Images: []string{"panjabi.jpg"}})
	svc := orderapp.NewService(repo, catalog, &counterIDs{}, orderapp.WithIdempotencyStore(ordermemory.NewIdempotencyStore()))

	router := gin.New()
	router.Use(auth.Middleware())
	NewOrderAPI(svc, workflows).RegisterRoutes(router)
	return &testServer{router: router, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

var admin = map[string]string{auth.HeaderRole: "ADMIN"}

func checkoutPayload(total any) map[string]any {
	return map[string]any{
		"customerName":     "Karim Hossain",
		"phone":            "01712345678",
		"division":         "Dhaka",
		"district":         "Gazipur",
		"postalCode":       "1700",
		"address":          "Tongi, Station Road",
		"shippingMethodId": "inside-dhaka",
		"items": []map[string]any{
			{"productId": "p1", "quantity": 2, "unitPrice": 1200, "discount": 200},
		},
		"totalAmount": total,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSubmitOrderCreatesPendingOrder(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil)

	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "ORD-A", body["orderId"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, "CASH_ON_DELIVERY", body["paymentMethod"])
	assert.Equal(t, 2260.0, body["totalAmount"])
	assert.Equal(t, 60.0, body["shippingCharge"])
	assert.Equal(t, "/api/orders/"+body["id"].(string), rec.Header().Get("Location"))
}

func TestSubmitOrderRejectsMismatchedTotal(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2000), nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, "/problems/validation-error", body["type"])
	ext := body["extensions"].(map[string]any)
	assert.Equal(t, 2260.0, ext["expected"])
	assert.Equal(t, 2000.0, ext["claimed"])
	assert.Contains(t, ext["fields"], "totalAmount")

	_, total, err := srv.repo.List(context.Background(), ports.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmitOrderRejectsSubCentAmounts(t *testing.T) {
	srv := newTestServer(t, nil)
	payload := checkoutPayload(2260)
	payload["phone"] = "call me"
	payload["postalCode"] = "17-00"
	payload["items"] = []map[string]any{{"productId": "p1", "quantity": 0, "unitPrice": 1200.005}}

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", payload, nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["extensions"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "items[0].unitPrice")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "postalCode")
	assert.Contains(t, fields, "items[0].quantity")
}

func TestSubmitOrderReportsSchemaAndTotalTogether(t *testing.T) {
	srv := newTestServer(t, nil)
	payload := checkoutPayload(2000)
	payload["phone"] = "abc"

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", payload, nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	ext := decode(t, rec)["extensions"].(map[string]any)
	fields := ext["fields"].(map[string]any)
	assert.Contains(t, fields, "phone")
	assert.Equal(t, "must equal 2260.00", fields["totalAmount"])
	assert.Equal(t, 2260.0, ext["expected"])
	assert.Equal(t, 2000.0, ext["claimed"])
}

func TestSubmitOrderRejectsOverflowingTotal(t *testing.T) {
	srv := newTestServer(t, nil)
	payload := checkoutPayload(json.Number("184467440737095726.16"))

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", payload, nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code, rec.Body.String())
	fields := decode(t, rec)["extensions"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "must not exceed 100000000000.00", fields["totalAmount"])
	_, total, err := srv.repo.List(context.Background(), ports.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmitOrderSchemaViolations(t *testing.T) {
	srv := newTestServer(t, nil)
	payload := checkoutPayload(2260)
	payload["phone"] = "call me"
	payload["postalCode"] = "17-00"
	payload["items"] = []map[string]any{{"productId": "p1", "quantity": 0, "unitPrice": 1200}}

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", payload, nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["extensions"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "postalCode")
	assert.Contains(t, fields, "items[0].quantity")
}

func TestSubmitOrderMalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", `{"items": [`, nil)

	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/bad-request", decode(t, rec)["type"])
}

func TestSubmitOrderIdempotencyKey(t *testing.T) {
	srv := newTestServer(t, nil)
	headers := map[string]string{HeaderIdempotencyKey: "checkout-1"}

	first := srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), headers)
	second := srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), headers)
	require.Equal(t, nethttp.StatusCreated, first.Code)
	require.Equal(t, nethttp.StatusCreated, second.Code)
	assert.Equal(t, decode(t, first)["id"], decode(t, second)["id"])

	changed := checkoutPayload(2260)
	changed["address"] = "Somewhere else"
	conflict := srv.do(t, nethttp.MethodPost, "/api/orders", changed, headers)
	assert.Equal(t, nethttp.StatusConflict, conflict.Code)
}

type stubWorkflows struct {
	called bool
	err    error
}

func (s *stubWorkflows) SubmitOrder(context.Context, ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	s.called = true
	return nil, s.err
}

func TestSubmitOrderPrefersWorkflows(t *testing.T) {
	workflows := &stubWorkflows{err: ports.ErrStorageUnavailable}
	srv := newTestServer(t, workflows)

	rec := srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil)

	assert.True(t, workflows.called)
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	srv := newTestServer(t, nil)
	customer := map[string]string{auth.HeaderRole: "CUSTOMER"}

	for _, tc := range []struct{ method, path string }{
		{nethttp.MethodGet, "/api/orders"},
		{nethttp.MethodGet, "/api/orders/some-id"},
		{nethttp.MethodPut, "/api/orders/some-id"},
		{nethttp.MethodPatch, "/api/orders/status"},
	} {
		rec := srv.do(t, tc.method, tc.path, map[string]any{}, customer)
		assert.Equal(t, nethttp.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUpdateOrderStatusFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	created := decode(t, srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil))

	rec := srv.do(t, nethttp.MethodPatch, "/api/orders/status", map[string]any{"orderId": created["orderId"], "status": "shipped"}, admin)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SHIPPED", decode(t, rec)["status"])

	rec = srv.do(t, nethttp.MethodPatch, "/api/orders/status", map[string]any{"orderId": created["orderId"], "status": "LOST"}, admin)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["extensions"].(map[string]any)["fields"], "status")

	rec = srv.do(t, nethttp.MethodPatch, "/api/orders/status", map[string]any{"orderId": "ORD-NOPE", "status": "SHIPPED"}, admin)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestTrackOrderIsPublic(t *testing.T) {
	srv := newTestServer(t, nil)
	created := decode(t, srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil))

	rec := srv.do(t, nethttp.MethodGet, "/api/orders/track/"+created["orderId"].(string), nil, nil)

	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	tracking := body["tracking"].(map[string]any)
	steps := tracking["steps"].([]any)
	require.Len(t, steps, 4)
	assert.Equal(t, true, steps[0].(map[string]any)["current"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Panjabi", item["product"].(map[string]any)["name"])
}

func TestGetOrderPopulate(t *testing.T) {
	srv := newTestServer(t, nil)
	created := decode(t, srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil))
	id := created["id"].(string)

	plain := decode(t, srv.do(t, nethttp.MethodGet, "/api/orders/"+id, nil, admin))
	assert.NotContains(t, plain["items"].([]any)[0].(map[string]any), "product")

	populated := decode(t, srv.do(t, nethttp.MethodGet, "/api/orders/"+id+"?populate=true", nil, admin))
	assert.Contains(t, populated["items"].([]any)[0].(map[string]any), "product")

	rec := srv.do(t, nethttp.MethodGet, "/api/orders/"+id+"?populate=maybe", nil, admin)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = srv.do(t, nethttp.MethodGet, "/api/orders/missing", nil, admin)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestUpdateOrderRevalidatesContact(t *testing.T) {
	srv := newTestServer(t, nil)
	created := decode(t, srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil))
	id := created["id"].(string)

	edit := checkoutPayload(0)
	edit["address"] = "Uttara Sector 7"
	edit["paymentMethod"] = "MOBILE_WALLET"
	rec := srv.do(t, nethttp.MethodPut, "/api/orders/"+id, edit, admin)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Uttara Sector 7", body["address"])
	assert.Equal(t, "MOBILE_WALLET", body["paymentMethod"])
	assert.Equal(t, 2260.0, body["totalAmount"])

	edit["phone"] = "not-a-phone"
	rec = srv.do(t, nethttp.MethodPut, "/api/orders/"+id, edit, admin)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["extensions"].(map[string]any)["fields"], "phone")
}

func TestListOrdersPagination(t *testing.T) {
	srv := newTestServer(t, nil)
	for i := 0; i < 3; i++ {
		require.Equal(t, nethttp.StatusCreated, srv.do(t, nethttp.MethodPost, "/api/orders", checkoutPayload(2260), nil).Code)
	}

	rec := srv.do(t, nethttp.MethodGet, "/api/orders?page=2&limit=2&sortBy=orderId&sortOrder=asc&filter[status]=pending&search[customerName]=karim", nil, admin)

	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, 3.0, pagination["totalItems"])
	assert.Equal(t, 2.0, pagination["totalPages"])
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-C", orders[0].(map[string]any)["orderId"])

	rec = srv.do(t, nethttp.MethodGet, "/api/orders?limit=abc", nil, admin)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = srv.do(t, nethttp.MethodGet, "/api/orders?sortBy=address", nil, admin)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = srv.do(t, nethttp.MethodGet, "/api/orders?page=100000000000000000&limit=100", nil, admin)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["extensions"].(map[string]any)["fields"], "page")
}

func TestMapErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ports.ErrNotFound, nethttp.StatusNotFound},
		{ports.ErrDuplicateKey, nethttp.StatusConflict},
		{ports.ErrConcurrentUpdate, nethttp.StatusConflict},
		{domain.ErrIllegalTransition, nethttp.StatusConflict},
		{ports.ErrIdempotencyConflict, nethttp.StatusConflict},
		{ports.ErrIdempotencyInProgress, nethttp.StatusConflict},
		{orderapp.ErrForbidden, nethttp.StatusForbidden},
		{domain.ErrInvalidStatus, nethttp.StatusBadRequest},
		{errors.Join(ports.ErrStorageUnavailable, errors.New("dial tcp")), nethttp.StatusServiceUnavailable},
		{&ports.ReferenceError{Missing: []ports.MissingReference{{Field: "shippingMethodId", Kind: "shipping method", ID: "x"}}}, nethttp.StatusBadRequest},
	}
	for _, tc := range cases {
		problem, ok := MapError(tc.err)
		require.True(t, ok, tc.err.Error())
		assert.Equal(t, tc.status, problem.Status, tc.err.Error())
	}

	_, ok := MapError(errors.New("boom"))
	assert.False(t, ok)
}
