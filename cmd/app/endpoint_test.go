package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"
	"github.com/mkellijah10/Oillabz/internal/storage"
)

// storeClient is one browser: a cookie jar keeps the visitor token across
// requests.
type storeClient struct {
	t    *testing.T
	http *http.Client
	base string
}

func newStorefront(t *testing.T) *storeClient {
	t.Helper()

	store := storage.NewMemory()
	catalog := services.NewCatalogService()
	cart := services.NewCartService(store)
	checkout := services.NewCheckoutService(store, cart, catalog)

	e := echo.New()
	api := e.Group("/store")
	registerProductRoutes(api, catalog)
	registerCartRoutes(api, cart, checkout)
	registerCheckoutRoutes(api, checkout, services.NewLocalValidator())
	registerContactRoutes(api, services.NewContactService(nil, ""))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &storeClient{t: t, http: &http.Client{Jar: jar}, base: srv.URL}
}

func (c *storeClient) do(method, path string, body any) (int, map[string]json.RawMessage) {
	c.t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]json.RawMessage{}
	require.NoError(c.t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func (c *storeClient) str(m map[string]json.RawMessage, key string) string {
	c.t.Helper()
	var s string
	require.NoError(c.t, json.Unmarshal(m[key], &s))
	return s
}

func TestProductEndpoints(t *testing.T) {
	c := newStorefront(t)

	status, _ := c.do(http.MethodGet, "/store/products/frag-001", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := c.do(http.MethodGet, "/store/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestCartRoundTripThroughHTTP(t *testing.T) {
	c := newStorefront(t)

	status, _ := c.do(http.MethodPost, "/store/cart", map[string]any{"productid": "frag-001", "quantity": 2})
	require.Equal(t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPost, "/store/cart", map[string]any{"productid": "air-001"})
	require.Equal(t, http.StatusCreated, status)

	status, body := c.do(http.MethodGet, "/store/cart/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "3", string(body["count"]))

	status, body = c.do(http.MethodGet, "/store/cart", nil)
	require.Equal(t, http.StatusOK, status)

	var items []model.ResolvedCartItem
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 2)

	var pricing model.Pricing
	require.NoError(t, json.Unmarshal(body["pricing"], &pricing))
	// 2 x 24.99 + 7.99 = 57.97, over the free-shipping threshold
	assert.Equal(t, int64(5797), pricing.SubtotalCents)
	assert.Equal(t, int64(0), pricing.ShippingCents)

	status, _ = c.do(http.MethodDelete, "/store/cart/frag-001", nil)
	require.Equal(t, http.StatusOK, status)
	status, body = c.do(http.MethodGet, "/store/cart/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "1", string(body["count"]))
}

func TestVisitorsDoNotShareCarts(t *testing.T) {
	a := newStorefront(t)

	status, _ := a.do(http.MethodPost, "/store/cart", map[string]any{"productid": "frag-001", "quantity": 1})
	require.Equal(t, http.StatusCreated, status)

	// a second browser against the same server
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	b := &storeClient{t: t, http: &http.Client{Jar: jar}, base: a.base}

	status, body := b.do(http.MethodGet, "/store/cart/count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "0", string(body["count"]))
}

func TestCheckoutFlowThroughHTTP(t *testing.T) {
	c := newStorefront(t)

	// empty cart cannot start checkout
	status, body := c.do(http.MethodPost, "/store/checkout/start", map[string]any{"email": "jane@example.com"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, c.str(body, "error"), "cart is empty")

	status, _ = c.do(http.MethodPost, "/store/cart", map[string]any{"productid": "frag-001", "quantity": 2})
	require.Equal(t, http.StatusCreated, status)

	status, _ = c.do(http.MethodPost, "/store/checkout/start", map[string]any{"email": "jane@example.com"})
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/store/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	var state model.CheckoutState
	require.NoError(t, json.Unmarshal(body["state"], &state))
	assert.Equal(t, model.StepCollectingInfo, state.Step)
	assert.Equal(t, "jane@example.com", state.Email)

	// invalid form points at the offending field
	status, body = c.do(http.MethodPost, "/store/checkout/info", map[string]any{
		"deliveryMethod": "pickup",
		"form":           map[string]any{"phoneNumber": "860-555-0100"},
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "fullName", c.str(body, "field"))

	status, body = c.do(http.MethodPost, "/store/checkout/info", map[string]any{
		"deliveryMethod": "pickup",
		"form":           map[string]any{"fullName": "Jane Buyer", "phoneNumber": "860-555-0100"},
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["state"], &state))
	assert.Equal(t, model.StepPaying, state.Step)

	var pricing model.Pricing
	require.NoError(t, json.Unmarshal(body["pricing"], &pricing))
	// 2 x 24.99, pickup pays no shipping
	assert.Equal(t, int64(4998), pricing.TotalCents)

	status, body = c.do(http.MethodPost, "/store/checkout/back", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["state"], &state))
	assert.Equal(t, model.StepCollectingInfo, state.Step)
	assert.Equal(t, "Jane Buyer", state.Form.FullName)
}

func TestContactEndpointValidation(t *testing.T) {
	c := newStorefront(t)

	status, body := c.do(http.MethodPost, "/store/contact", map[string]any{
		"email":   "jane@example.com",
		"message": "hello",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name", c.str(body, "field"))

	// valid message against an unconfigured mailer
	status, body = c.do(http.MethodPost, "/store/contact", map[string]any{
		"name":    "Jane Buyer",
		"email":   "jane@example.com",
		"message": "hello",
	})
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.NotEmpty(t, body["error"])
}

func TestCheckoutWithoutSessionRedirectsToCart(t *testing.T) {
	c := newStorefront(t)

	status, body := c.do(http.MethodGet, "/store/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/cart", c.str(body, "redirect"))
}
