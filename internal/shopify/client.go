// Package shopify wraps the commerce platform's Admin API. Only the fields
// the chat pipeline forwards to the answer generator are modeled.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrOrderNotFound is the domain error for an order number / email pair that
// matches nothing. Handlers turn it into a conversational apology, never a
// stack trace.
var ErrOrderNotFound = errors.New("ORDER_NOT_FOUND")

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(storeDomain, accessToken string) *Client {
	return &Client{
		baseURL: "https://" + storeDomain + "/admin/api/2024-01",
		token:   accessToken,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Fulfillment struct {
	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingURL     string `json:"tracking_url"`
	TrackingCompany string `json:"tracking_company"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	SKU      string `json:"sku"`
}

type Order struct {
	Name              string        `json:"name"` // "#1234"
	Email             string        `json:"email"`
	FinancialStatus   string        `json:"financial_status"`
	FulfillmentStatus string        `json:"fulfillment_status"`
	CreatedAt         string        `json:"created_at"`
	TotalPrice        string        `json:"total_price"`
	Currency          string        `json:"currency"`
	Customer          Customer      `json:"customer"`
	ShippingAddress   Address       `json:"shipping_address"`
	BillingAddress    Address       `json:"billing_address"`
	Fulfillments      []Fulfillment `json:"fulfillments"`
	LineItems         []LineItem    `json:"line_items"`
}

// GetOrder looks an order up by number and verifies it belongs to the given
// email. Returns ErrOrderNotFound on any mismatch.
func (c *Client) GetOrder(ctx context.Context, orderNumber, email string) (*Order, error) {
	q := url.Values{}
	q.Set("status", "any")
	q.Set("name", "#"+strings.TrimPrefix(orderNumber, "#"))

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := c.get(ctx, "/orders.json?"+q.Encode(), &payload); err != nil {
		return nil, err
	}

	for i := range payload.Orders {
		o := &payload.Orders[i]
		if strings.EqualFold(o.Email, email) || strings.EqualFold(o.Customer.Email, email) {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

type Product struct {
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	BodyHTML string `json:"body_html"`
	Tags     string `json:"tags"`
	Variants []struct {
		Title             string `json:"title"`
		InventoryQuantity int    `json:"inventory_quantity"`
	} `json:"variants"`
}

// GetProduct fetches a product by handle, for product-information answers.
func (c *Client) GetProduct(ctx context.Context, handle string) (*Product, error) {
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, "/products.json?handle="+url.QueryEscape(handle), &payload); err != nil {
		return nil, err
	}
	if len(payload.Products) == 0 {
		return nil, fmt.Errorf("shopify: product %q not found", handle)
	}
	return &payload.Products[0], nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify api error: %s body=%s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
