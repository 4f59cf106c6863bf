package classify

import "strings"

// Intent is one of the fixed support taxonomy tags. Exactly one intent is
// active per resolved turn.
type Intent string

const (
	IntentOrderTracking   Intent = "order_tracking"
	IntentReturnsExchange Intent = "returns_exchange"
	IntentChangeDelivery  Intent = "change_delivery"
	IntentDeliveryIssue   Intent = "delivery_issue"
	IntentProductSizing   Intent = "product_sizing"
	IntentProductInfo     Intent = "product_information"
	IntentRestock         Intent = "restock"
	IntentPromoCode       Intent = "promo_code"
	IntentInvoiceRequest  Intent = "invoice_request"
	IntentUpdateOrder     Intent = "update_order"
	IntentConversationEnd Intent = "conversation_end"
	IntentReturnStatus    Intent = "return_status"
	IntentOtherOrder      Intent = "other-order"
	IntentOtherGeneral    Intent = "other-general"
)

var knownIntents = map[Intent]bool{
	IntentOrderTracking:   true,
	IntentReturnsExchange: true,
	IntentChangeDelivery:  true,
	IntentDeliveryIssue:   true,
	IntentProductSizing:   true,
	IntentProductInfo:     true,
	IntentRestock:         true,
	IntentPromoCode:       true,
	IntentInvoiceRequest:  true,
	IntentUpdateOrder:     true,
	IntentConversationEnd: true,
	IntentReturnStatus:    true,
	IntentOtherOrder:      true,
	IntentOtherGeneral:    true,
}

// ParseIntent maps free text onto the taxonomy, falling back to other-general.
func ParseIntent(s string) Intent {
	in := Intent(strings.TrimSpace(strings.ToLower(s)))
	if knownIntents[in] {
		return in
	}
	return IntentOtherGeneral
}

// Params is the flat slot set extracted alongside an intent. Handlers only
// trust the slots relevant to their own intent; the resolver guarantees stale
// slots do not leak across an intent switch.
type Params struct {
	OrderNumber              string `json:"order_number"`
	Email                    string `json:"email"`
	ProductHandle            string `json:"product_handle"`
	ProductName              string `json:"product_name"`
	ProductSize              string `json:"product_size"`
	SizeQuery                string `json:"size_query"`
	NewDeliveryInfo          string `json:"new_delivery_info"`
	DeliveryStatus           string `json:"delivery_status"`
	TrackingNumber           string `json:"tracking_number"`
	DeliveryAddressConfirmed bool   `json:"delivery_address_confirmed"`
	ReturnType               string `json:"return_type"`
	ReturnsWebsiteSent       bool   `json:"returns_website_sent"`
	UpdateType               string `json:"update_type"`
	Height                   string `json:"height"`
	Fit                      string `json:"fit"`
}

// merge overlays p on top of prev: previous values act as defaults, newly
// extracted values win on conflict.
func (p Params) merge(prev Params) Params {
	out := p
	if out.OrderNumber == "" {
		out.OrderNumber = prev.OrderNumber
	}
	if out.Email == "" {
		out.Email = prev.Email
	}
	if out.ProductHandle == "" {
		out.ProductHandle = prev.ProductHandle
	}
	if out.ProductName == "" {
		out.ProductName = prev.ProductName
	}
	if out.ProductSize == "" {
		out.ProductSize = prev.ProductSize
	}
	if out.SizeQuery == "" {
		out.SizeQuery = prev.SizeQuery
	}
	if out.NewDeliveryInfo == "" {
		out.NewDeliveryInfo = prev.NewDeliveryInfo
	}
	if out.DeliveryStatus == "" {
		out.DeliveryStatus = prev.DeliveryStatus
	}
	if out.TrackingNumber == "" {
		out.TrackingNumber = prev.TrackingNumber
	}
	if !out.DeliveryAddressConfirmed {
		out.DeliveryAddressConfirmed = prev.DeliveryAddressConfirmed
	}
	if out.ReturnType == "" {
		out.ReturnType = prev.ReturnType
	}
	if !out.ReturnsWebsiteSent {
		out.ReturnsWebsiteSent = prev.ReturnsWebsiteSent
	}
	if out.UpdateType == "" {
		out.UpdateType = prev.UpdateType
	}
	if out.Height == "" {
		out.Height = prev.Height
	}
	if out.Fit == "" {
		out.Fit = prev.Fit
	}
	return out
}

// Turn is one entry of the conversation context. Order is significant: the
// resolver scans forward for first-match extraction and backward for the most
// recent agent turn.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// ClassifiedMessage is the classifier output for one turn, mutated in place by
// the resolver before handlers see it. Created per request, never persisted.
type ClassifiedMessage struct {
	Intent     Intent `json:"intent"`
	Parameters Params `json:"parameters"`
	Language   string `json:"language"`
}

const (
	LanguageEnglish = "English"
	LanguageSpanish = "Spanish"
)

// Default is the safe classification every failure path degrades to.
func Default() *ClassifiedMessage {
	return &ClassifiedMessage{
		Intent:     IntentOtherGeneral,
		Parameters: Params{},
		Language:   LanguageEnglish,
	}
}
