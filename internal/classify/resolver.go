package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	orderTokenRe   = regexp.MustCompile(`#\d{4,}`)
	digitRunRe     = regexp.MustCompile(`\d{4,}`)
	orderExtractRe = regexp.MustCompile(`#(\d{4,})`)
	emailRe        = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	hereLinkRe     = regexp.MustCompile(`\[here\]\((https?://[^)\s]+)\)`)
)

// freshStartPhrases signal the user is opening a new topic rather than
// answering a pending question.
var freshStartPhrases = []string{
	"otro pedido",
	"another order",
	"nuevo pedido",
	"new order",
	"algo más",
	"algo mas",
	"otra cosa",
	"quiero",
	"i want",
	"track",
}

// closingPhrases mark an agent turn that reads as a conversation conclusion.
var closingPhrases = []string{
	"gracias",
	"thank you",
	"thanks",
	"que tengas",
	"de nada",
	"you're welcome",
}

// completionPairs pair a topic keyword with a completion keyword; both present
// in the last agent turn also count as a concluded conversation.
var completionPairs = [][2]string{
	{"pedido", "número de seguimiento"},
	{"order", "tracking number"},
	{"talla", "recomendación"},
	{"size", "recommendation"},
}

// intentRule is one row of the new-request decision table. Rows are evaluated
// in order, first match wins; there is no partial scoring.
type intentRule struct {
	intent   Intent
	keywords []string
}

var newRequestRules = []intentRule{
	{IntentOrderTracking, []string{"track", "seguimiento", "donde esta", "dónde está", "where is"}},
	{IntentReturnsExchange, []string{"devolver", "devolucion", "devolución", "cambiar por", "return", "exchange"}},
	{IntentProductSizing, []string{"talla", "size", "mido"}},
	{IntentRestock, []string{"restock", "reposicion", "reposición", "stock", "disponible"}},
	{IntentPromoCode, []string{"descuento", "promo", "codigo", "código", "discount"}},
	{IntentInvoiceRequest, []string{"factura", "invoice"}},
	{IntentDeliveryIssue, []string{"no ha llegado", "not arrived", "dañado", "damaged", "perdido", "lost"}},
	{IntentChangeDelivery, []string{"cambiar direccion", "cambiar dirección", "change address", "otra direccion", "otra dirección"}},
	{IntentUpdateOrder, []string{"modificar pedido", "update order", "cambiar pedido", "change my order"}},
}

// Resolver post-processes a raw classification against the full conversation:
// follow-up inheritance, new-request reset, stale other-general rescue, plus
// the branch-independent tracking/returns/backfill passes.
type Resolver struct {
	// ReturnsURL is the returns-portal address; its presence in any context
	// turn means the portal link was already sent to the customer.
	ReturnsURL string
}

// Resolve mutates cm in place. Precedence is deliberate and load-bearing:
// follow-up is checked before new-request, so a message that satisfies both
// is treated as a follow-up answer.
func (r *Resolver) Resolve(cm *ClassifiedMessage, turns []Turn) {
	agentText := lastAgentTurn(turns)

	switch {
	case isFollowUp(agentText, cm.Parameters):
		inheritPrevious(cm, turns)

	case isNewRequest(cm.Parameters, agentText):
		probe := strings.ToLower(cm.Parameters.OrderNumber + " " + cm.Parameters.Email)
		cm.Parameters = Params{}
		cm.Intent = deriveIntent(probe)

	case cm.Intent == IntentOtherGeneral:
		// The classifier gave up; a previous specific topic may still be live.
		inheritPrevious(cm, turns)
	}

	if cm.Intent == IntentDeliveryIssue {
		if tn := trackingFromContext(turns); tn != "" {
			cm.Parameters.TrackingNumber = tn
		}
	}

	if cm.Intent == IntentReturnsExchange {
		cm.Parameters.ReturnsWebsiteSent = r.returnsLinkSent(turns)
	}

	backfillIdentity(&cm.Parameters, turns)
}

// lastAgentTurn returns the content of the most recent system or assistant
// turn, or "" when there is none.
func lastAgentTurn(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "assistant" || turns[i].Role == "system" {
			return turns[i].Content
		}
	}
	return ""
}

func asksForOrderNumber(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "order number") ||
		strings.Contains(t, "número de pedido") ||
		strings.Contains(t, "numero de pedido") ||
		strings.Contains(t, "#")
}

func asksForEmail(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "email") || strings.Contains(t, "correo")
}

// isFollowUp reports whether the turn answers a pending solicitation from the
// last agent message: the agent asked for an order number or email, and the
// freshly extracted parameters actually carry one.
func isFollowUp(agentText string, p Params) bool {
	if agentText == "" {
		return false
	}
	if asksForOrderNumber(agentText) &&
		(orderTokenRe.MatchString(p.OrderNumber) || digitRunRe.MatchString(p.OrderNumber)) {
		return true
	}
	if asksForEmail(agentText) && emailRe.MatchString(p.Email) {
		return true
	}
	return false
}

// inheritPrevious pulls intent and parameters from the nearest prior assistant
// turn whose content is a JSON classification with a specific (non
// other-general) intent. Unparseable turns are skipped, never fatal.
func inheritPrevious(cm *ClassifiedMessage, turns []Turn) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != "assistant" {
			continue
		}
		obj, ok := extractJSONObject(turns[i].Content)
		if !ok {
			continue
		}
		var prev struct {
			Intent     string `json:"intent"`
			Parameters Params `json:"parameters"`
		}
		if err := json.Unmarshal([]byte(obj), &prev); err != nil {
			continue
		}
		intent := ParseIntent(prev.Intent)
		if prev.Intent == "" || intent == IntentOtherGeneral {
			continue
		}
		cm.Intent = intent
		cm.Parameters = cm.Parameters.merge(prev.Parameters)
		return
	}
}

func isNewRequest(p Params, agentText string) bool {
	probe := strings.ToLower(p.OrderNumber + " " + p.Email)
	fresh := false
	for _, phrase := range freshStartPhrases {
		if strings.Contains(probe, phrase) {
			fresh = true
			break
		}
	}
	if !fresh {
		return false
	}
	return conversationConcluded(agentText)
}

func conversationConcluded(agentText string) bool {
	t := strings.ToLower(agentText)
	if t == "" {
		return false
	}
	for _, phrase := range closingPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	for _, pair := range completionPairs {
		if strings.Contains(t, pair[0]) && strings.Contains(t, pair[1]) {
			return true
		}
	}
	return false
}

// deriveIntent re-classifies a fresh-start message by walking the decision
// table in priority order.
func deriveIntent(probe string) Intent {
	for _, rule := range newRequestRules {
		for _, kw := range rule.keywords {
			if strings.Contains(probe, kw) {
				return rule.intent
			}
		}
	}
	if strings.Contains(probe, "pedido") || strings.Contains(probe, "order") {
		return IntentOtherOrder
	}
	return IntentOtherGeneral
}

// trackingFromContext extracts a carrier tracking number from the first
// markdown [here](...) link whose final path segment is purely numeric.
func trackingFromContext(turns []Turn) string {
	for _, t := range turns {
		m := hereLinkRe.FindStringSubmatch(t.Content)
		if m == nil {
			continue
		}
		u := strings.TrimRight(m[1], "/")
		seg := u[strings.LastIndex(u, "/")+1:]
		if seg != "" && digitsOnly(seg) {
			return seg
		}
	}
	return ""
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (r *Resolver) returnsLinkSent(turns []Turn) bool {
	if r.ReturnsURL == "" {
		return false
	}
	for _, t := range turns {
		if strings.Contains(t.Content, r.ReturnsURL) {
			return true
		}
	}
	return false
}

// backfillIdentity fills a still-empty order number or email from prior
// user-authored turns, chronologically, first match wins. Agent turns are
// never a source: an email quoted by the assistant must not become the
// customer's email.
func backfillIdentity(p *Params, turns []Turn) {
	for _, t := range turns {
		if p.OrderNumber != "" && p.Email != "" {
			return
		}
		if t.Role != "user" {
			continue
		}
		if p.OrderNumber == "" {
			if m := orderExtractRe.FindStringSubmatch(t.Content); m != nil {
				p.OrderNumber = m[1]
			}
		}
		if p.Email == "" {
			if m := emailRe.FindString(t.Content); m != "" {
				p.Email = m
			}
		}
	}
}
