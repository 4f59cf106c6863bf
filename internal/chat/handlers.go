package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/gericke98/happy-customer/internal/answer"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/shopify"
)

// needsOrderIdentity lists the intents that cannot be answered without both
// order number and email. They never reach the model on missing identity.
var needsOrderIdentity = map[classify.Intent]bool{
	classify.IntentOrderTracking:  true,
	classify.IntentOtherOrder:     true,
	classify.IntentUpdateOrder:    true,
	classify.IntentInvoiceRequest: true,
	classify.IntentReturnStatus:   true,
}

var askFullAddress = map[string]string{
	classify.LanguageEnglish: "I couldn't find that address. Could you send it again with street, number, city and postcode?",
	classify.LanguageSpanish: "No he podido encontrar esa dirección. ¿Me la pasas de nuevo con calle, número, ciudad y código postal?",
}

var pickAddressPrefix = map[string]string{
	classify.LanguageEnglish: "I found a few matching addresses, which one is yours?",
	classify.LanguageSpanish: "He encontrado varias direcciones que encajan, ¿cuál es la tuya?",
}

// dispatch routes a resolved classification to its intent handler and returns
// the reply text. The default handler is the answer generator with no extra
// data.
func (s *service) dispatch(ctx context.Context, cm *classify.ClassifiedMessage, message string, turns []classify.Turn) string {
	req := answer.Request{
		Intent:      cm.Intent,
		Parameters:  cm.Parameters,
		UserMessage: message,
		Context:     turns,
		Language:    cm.Language,
	}

	if needsOrderIdentity[cm.Intent] {
		if cm.Parameters.OrderNumber == "" || cm.Parameters.Email == "" {
			return answer.Pick(answer.AskOrderIdentity, cm.Language)
		}
		order, err := s.orders.GetOrder(ctx, cm.Parameters.OrderNumber, cm.Parameters.Email)
		switch {
		case errors.Is(err, shopify.ErrOrderNotFound):
			return answer.Pick(answer.OrderNotFoundReply, cm.Language)
		case err != nil:
			s.log.Error("order lookup failed", map[string]interface{}{
				"orderNumber": cm.Parameters.OrderNumber,
				"error":       err.Error(),
			})
			// Answer without data rather than leaking a provider error.
		default:
			req.Order = order
		}
	}

	switch cm.Intent {
	case classify.IntentProductInfo:
		if cm.Parameters.ProductHandle != "" {
			if product, err := s.orders.GetProduct(ctx, cm.Parameters.ProductHandle); err == nil {
				req.Product = product
			}
		}

	case classify.IntentProductSizing, classify.IntentRestock:
		if size := firstNonEmpty(cm.Parameters.ProductSize, cm.Parameters.SizeQuery); size != "" {
			normalized := answer.NormalizeSize(size)
			req.Parameters.ProductSize = normalized
			req.Parameters.SizeQuery = normalized
		}
		if cm.Intent == classify.IntentProductSizing {
			req.SizeCharts = s.sizeCharts
		}

	case classify.IntentChangeDelivery:
		if cm.Parameters.NewDeliveryInfo != "" && !cm.Parameters.DeliveryAddressConfirmed {
			if reply, done := s.confirmAddress(ctx, &req, cm); done {
				return reply
			}
		}
	}

	reply, _ := s.generator.Generate(ctx, req)
	return reply
}

// confirmAddress validates the proposed delivery address. It short-circuits
// with a reply when the address is invalid or ambiguous; a single clean
// candidate is written back into the request and the flow continues.
func (s *service) confirmAddress(ctx context.Context, req *answer.Request, cm *classify.ClassifiedMessage) (string, bool) {
	res, err := s.addresses.Validate(ctx, cm.Parameters.NewDeliveryInfo)
	if err != nil {
		s.log.Error("address validation failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}

	if res.MultipleCandidates {
		var b strings.Builder
		b.WriteString(answer.Pick(pickAddressPrefix, cm.Language))
		for _, c := range res.AddressCandidates {
			b.WriteString("\n- ")
			b.WriteString(c)
		}
		return b.String(), true
	}

	if res.FormattedAddress == "" {
		return answer.Pick(askFullAddress, cm.Language), true
	}

	req.Parameters.NewDeliveryInfo = res.FormattedAddress
	req.Parameters.DeliveryAddressConfirmed = true
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
