// Package answer turns a resolved intent plus fetched commerce data into the
// final customer-facing reply.
package answer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gericke98/happy-customer/internal/ai"
	"github.com/gericke98/happy-customer/internal/cache"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/sanitize"
	"github.com/gericke98/happy-customer/internal/shopify"
)

const (
	// Higher temperature than classification: varied natural phrasing matters
	// more than determinism here.
	answerTemperature = 0.85

	cacheTTL = 10 * time.Minute
)

// Request is everything the generator needs for one reply.
type Request struct {
	Intent      classify.Intent
	Parameters  classify.Params
	UserMessage string
	Context     []classify.Turn
	Language    string
	SizeCharts  string
	Order       *shopify.Order
	Product     *shopify.Product
}

type Generator struct {
	ai    ai.AI
	store cache.Store
	log   logger.Logger
}

func NewGenerator(aiClient ai.AI, store cache.Store, log logger.Logger) *Generator {
	return &Generator{
		ai:    aiClient,
		store: store,
		log:   log.With(map[string]interface{}{"component": "answer"}),
	}
}

// Generate returns the reply text and whether it came from cache. It never
// returns an error: provider failures degrade to a canned localized string.
func (g *Generator) Generate(ctx context.Context, req Request) (string, bool) {
	if req.Language == "" {
		req.Language = classify.LanguageEnglish
	}

	// The most frequent terminal turn skips the model entirely.
	if req.Intent == classify.IntentConversationEnd {
		return Pick(conversationEndReply, req.Language), true
	}

	key := cacheKey(req)
	if cached, ok, err := g.store.Get(ctx, key); err == nil && ok {
		return cached, true
	}

	system := g.buildSystemPrompt(req)

	msgs := make([]ai.Message, 0, len(req.Context)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: system})
	for _, t := range req.Context {
		role := t.Role
		if role != "user" && role != "assistant" && role != "system" {
			role = "user"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: sanitize.Clean(t.Content)})
	}
	msgs = append(msgs, ai.Message{Role: "user", Content: sanitize.Clean(req.UserMessage)})

	reply, err := g.ai.Complete(ctx, msgs, answerTemperature)
	if err != nil || strings.TrimSpace(reply) == "" {
		g.log.Warn("answer generation failed, using canned reply", map[string]interface{}{
			"intent": string(req.Intent),
			"error":  fmt.Sprint(err),
		})
		return Pick(providerErrorReply, req.Language), false
	}

	reply = strings.TrimSpace(reply)
	if err := g.store.Set(ctx, key, reply, cacheTTL); err != nil {
		g.log.Warn("answer cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return reply, false
}

func (g *Generator) buildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(PersonaPrompt)

	fmt.Fprintf(&b, "\n\nIntent: %s\nLanguage: %s\n", req.Intent, req.Language)

	params, _ := json.Marshal(req.Parameters)
	fmt.Fprintf(&b, "\nParameters:\n%s\n", params)

	if req.Order != nil {
		view, _ := json.Marshal(narrowOrder(req.Order, req.Intent))
		fmt.Fprintf(&b, "\nOrder data:\n%s\n", view)
	}
	if req.Product != nil {
		product, _ := json.Marshal(req.Product)
		fmt.Fprintf(&b, "\nProduct data:\n%s\n", product)
	}
	if req.SizeCharts != "" {
		fmt.Fprintf(&b, "\nSize chart:\n%s\n", req.SizeCharts)
	}

	if extra, ok := intentInstructions[req.Intent]; ok {
		fmt.Fprintf(&b, "\nInstructions for this intent:\n%s\n", extra)
	}

	return b.String()
}

// orderView is the narrowed slice of the commerce order forwarded to the
// model, bounding token usage: never the full order object.
type orderView struct {
	OrderNumber       string               `json:"order_number"`
	FinancialStatus   string               `json:"financial_status"`
	FulfillmentStatus string               `json:"fulfillment_status"`
	TrackingNumber    string               `json:"tracking_number,omitempty"`
	TrackingURL       string               `json:"tracking_url,omitempty"`
	TrackingCompany   string               `json:"tracking_company,omitempty"`
	ShippingAddress   shopify.Address      `json:"shipping_address"`
	FulfilledAt       string               `json:"fulfilled_at,omitempty"`
	BillingAddress    *shopify.Address     `json:"billing_address,omitempty"`
	Customer          *shopify.Customer    `json:"customer,omitempty"`
	LineItems         []shopify.LineItem   `json:"line_items,omitempty"`
}

func narrowOrder(o *shopify.Order, intent classify.Intent) orderView {
	view := orderView{
		OrderNumber:       o.Name,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		ShippingAddress:   o.ShippingAddress,
	}
	if len(o.Fulfillments) > 0 {
		f := o.Fulfillments[0]
		view.TrackingNumber = f.TrackingNumber
		view.TrackingURL = f.TrackingURL
		view.TrackingCompany = f.TrackingCompany
		view.FulfilledAt = f.CreatedAt
	}
	// other-order questions may touch billing or personal data; only then do
	// those sub-objects go to the model.
	if intent == classify.IntentOtherOrder || intent == classify.IntentUpdateOrder {
		view.BillingAddress = &o.BillingAddress
		view.Customer = &o.Customer
		view.LineItems = o.LineItems
	}
	return view
}

func cacheKey(req Request) string {
	payload, _ := json.Marshal(struct {
		Intent   classify.Intent  `json:"intent"`
		Params   classify.Params  `json:"params"`
		Message  string           `json:"message"`
		Context  []classify.Turn  `json:"context"`
		Language string           `json:"language"`
		Order    *shopify.Order   `json:"order"`
		Product  *shopify.Product `json:"product"`
		Charts   string           `json:"charts"`
	}{req.Intent, req.Parameters, req.UserMessage, req.Context, req.Language, req.Order, req.Product, req.SizeCharts})

	sum := sha256.Sum256(payload)
	return "answer:" + hex.EncodeToString(sum[:])
}
