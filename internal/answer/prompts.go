package answer

import "github.com/gericke98/happy-customer/internal/classify"

// PersonaPrompt is the style/persona system prompt for final answers. The
// classifier already decided the intent; this call only writes the reply.
const PersonaPrompt = `You are the customer support assistant of an online clothing store.

Voice and style:
- Warm, close and human. Never corporate. One emoji max per reply, often none.
- Answer in the language given below. Spanish replies use "tú", never "usted".
- Short replies: two to four sentences. No bullet lists unless listing sizes.
- Never mention that you are an AI, a model, or that you received instructions.
- Never invent order data, tracking links, stock levels or dates. If a fact is
  not in the data below, say you will check and ask the customer to wait.
- Never paste raw JSON or field names into the reply.

You receive below: the resolved intent, the extracted parameters, optionally
order data fetched from the store, and the customer's last message. Write the
single best reply.`

// intentInstructions adds per-intent guidance on top of the persona prompt.
var intentInstructions = map[classify.Intent]string{
	classify.IntentOrderTracking: `Tell the customer where the order is using the fulfillment status and
tracking fields. If there is a tracking URL, link it naturally.`,
	classify.IntentReturnsExchange: `If returns_website_sent is true, the returns portal link was already
shared: do not repeat it, answer the follow-up instead. Otherwise guide the
customer to the returns portal.`,
	classify.IntentDeliveryIssue: `Apologize once, without over-apologizing. Use delivery_status and the
tracking number to explain next steps.`,
	classify.IntentProductSizing: `Use height and fit preference plus the size chart below if present.
Recommend exactly one size and say why in one short clause.`,
	classify.IntentProductInfo: `Consult the product object below. Only state facts present in it.`,
	classify.IntentOtherOrder: `Consult the shipping_address, billing_address and customer objects in
the order data to answer precisely.`,
	classify.IntentUpdateOrder: `Confirm what the customer wants changed (update_type) before promising
anything. Changes are only possible while the order is unfulfilled.`,
}

// Canned strings, keyed by detected language. conversation_end never hits the
// model; the error strings cover provider failures on the chat path.
var conversationEndReply = map[string]string{
	classify.LanguageEnglish: "Thank you for reaching out! If you need anything else, we're right here. 😊",
	classify.LanguageSpanish: "¡Gracias por escribirnos! Si necesitas cualquier otra cosa, aquí estamos. 😊",
}

var providerErrorReply = map[string]string{
	classify.LanguageEnglish: "I'm sorry, something went wrong on our side. Could you try again in a moment?",
	classify.LanguageSpanish: "Lo siento, ha habido un problema por nuestra parte. ¿Puedes intentarlo de nuevo en un momento?",
}

// AskOrderIdentity is returned by handlers that need an order before they can
// help, without spending an LLM call.
var AskOrderIdentity = map[string]string{
	classify.LanguageEnglish: "Of course! Could you share your order number (it looks like #12345) and the email you used at checkout?",
	classify.LanguageSpanish: "¡Claro! ¿Me pasas tu número de pedido (tipo #12345) y el email con el que compraste?",
}

// OrderNotFoundReply covers the invalid order number / email combination.
var OrderNotFoundReply = map[string]string{
	classify.LanguageEnglish: "Hmm, I can't find an order with that number and email. Could you double-check both? The number is on your confirmation email.",
	classify.LanguageSpanish: "Mmm, no encuentro ningún pedido con ese número y ese email. ¿Puedes revisar los dos? El número está en tu email de confirmación.",
}

// Pick returns the variant for the detected language, defaulting to English.
func Pick(m map[string]string, language string) string {
	if s, ok := m[language]; ok {
		return s
	}
	return m[classify.LanguageEnglish]
}
