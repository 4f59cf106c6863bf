package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{baseURL: srv.URL, token: "test-token", client: srv.Client()}
}

func TestGetOrderMatchesEmail(t *testing.T) {
	var gotToken, gotName string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotName = r.URL.Query().Get("name")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []Order{
				{Name: "#1001", Email: "someone.else@example.com"},
				{Name: "#1001", Email: "Ana@Example.com", FulfillmentStatus: "fulfilled"},
			},
		})
	})

	order, err := c.GetOrder(context.Background(), "1001", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fulfilled", order.FulfillmentStatus)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "#1001", gotName)
}

func TestGetOrderMatchesCustomerEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []Order{
				{Name: "#1001", Customer: Customer{Email: "ana@example.com"}},
			},
		})
	})

	_, err := c.GetOrder(context.Background(), "#1001", "ana@example.com")
	assert.NoError(t, err)
}

func TestGetOrderWrongEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []Order{{Name: "#1001", Email: "someone.else@example.com"}},
		})
	})

	_, err := c.GetOrder(context.Background(), "1001", "ana@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderNoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"orders": []Order{}})
	})

	_, err := c.GetOrder(context.Background(), "9999", "ana@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.GetOrder(context.Background(), "1001", "ana@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
}

func TestGetProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "black-hoodie", r.URL.Query().Get("handle"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"products": []Product{{Title: "Black Hoodie", Handle: "black-hoodie"}},
		})
	})

	product, err := c.GetProduct(context.Background(), "black-hoodie")
	require.NoError(t, err)
	assert.Equal(t, "Black Hoodie", product.Title)
}

func TestGetProductNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"products": []Product{}})
	})

	_, err := c.GetProduct(context.Background(), "nope")
	assert.Error(t, err)
}
