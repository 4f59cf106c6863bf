package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gericke98/happy-customer/internal/ai"
	"github.com/gericke98/happy-customer/internal/cache"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/shopify"
)

type fakeAI struct {
	resp  string
	err   error
	calls int

	gotTemp   float32
	gotSystem string
}

func (f *fakeAI) Complete(_ context.Context, msgs []ai.Message, temp float32) (string, error) {
	f.calls++
	f.gotTemp = temp
	if len(msgs) > 0 {
		f.gotSystem = msgs[0].Content
	}
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func newGenerator(fake *fakeAI) *Generator {
	return NewGenerator(fake, cache.NewMemoryStore(100), logger.NewNop())
}

func TestConversationEndSkipsModel(t *testing.T) {
	fake := &fakeAI{resp: "should never be used"}
	g := newGenerator(fake)

	reply, cached := g.Generate(context.Background(), Request{
		Intent:      classify.IntentConversationEnd,
		UserMessage: "Thanks!",
		Language:    classify.LanguageEnglish,
	})

	assert.Equal(t, conversationEndReply[classify.LanguageEnglish], reply)
	assert.True(t, cached)
	assert.Zero(t, fake.calls, "the model must not be invoked")
}

func TestConversationEndSpanish(t *testing.T) {
	g := newGenerator(&fakeAI{})
	reply, _ := g.Generate(context.Background(), Request{
		Intent:   classify.IntentConversationEnd,
		Language: classify.LanguageSpanish,
	})
	assert.Equal(t, conversationEndReply[classify.LanguageSpanish], reply)
}

func TestGenerateUsesHighTemperature(t *testing.T) {
	fake := &fakeAI{resp: "Your order is on its way!"}
	g := newGenerator(fake)

	reply, cached := g.Generate(context.Background(), Request{
		Intent:      classify.IntentOrderTracking,
		UserMessage: "where is my order",
		Language:    classify.LanguageEnglish,
	})

	assert.Equal(t, "Your order is on its way!", reply)
	assert.False(t, cached)
	assert.InDelta(t, 0.85, float64(fake.gotTemp), 0.001)
}

func TestGenerateCachesReplies(t *testing.T) {
	fake := &fakeAI{resp: "hello there"}
	g := newGenerator(fake)
	req := Request{
		Intent:      classify.IntentPromoCode,
		UserMessage: "my code broke",
		Language:    classify.LanguageEnglish,
	}

	_, cached := g.Generate(context.Background(), req)
	assert.False(t, cached)

	reply, cached := g.Generate(context.Background(), req)
	assert.True(t, cached)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, 1, fake.calls)

	// A different message misses the cache.
	req.UserMessage = "another question"
	_, cached = g.Generate(context.Background(), req)
	assert.False(t, cached)
	assert.Equal(t, 2, fake.calls)
}

func TestGenerateProviderFailureReturnsCannedReply(t *testing.T) {
	fake := &fakeAI{err: errors.New("rate limited")}
	g := newGenerator(fake)

	reply, cached := g.Generate(context.Background(), Request{
		Intent:      classify.IntentOrderTracking,
		UserMessage: "dónde está mi pedido",
		Language:    classify.LanguageSpanish,
	})

	assert.Equal(t, providerErrorReply[classify.LanguageSpanish], reply)
	assert.False(t, cached)
}

func TestSystemPromptNarrowsOrder(t *testing.T) {
	fake := &fakeAI{resp: "ok"}
	g := newGenerator(fake)

	order := &shopify.Order{
		Name:              "#1001",
		Email:             "secret@example.com",
		FulfillmentStatus: "fulfilled",
		Fulfillments: []shopify.Fulfillment{
			{TrackingNumber: "TR123", TrackingURL: "https://carrier.example.com/TR123"},
		},
		Customer: shopify.Customer{Phone: "+34600000000"},
	}

	g.Generate(context.Background(), Request{
		Intent:      classify.IntentOrderTracking,
		UserMessage: "where is it",
		Language:    classify.LanguageEnglish,
		Order:       order,
	})

	require.NotEmpty(t, fake.gotSystem)
	assert.Contains(t, fake.gotSystem, "TR123")
	assert.Contains(t, fake.gotSystem, "#1001")
	// Customer sub-object only goes out for other-order / update_order.
	assert.NotContains(t, fake.gotSystem, "+34600000000")
}

func TestSystemPromptIncludesCustomerForOtherOrder(t *testing.T) {
	fake := &fakeAI{resp: "ok"}
	g := newGenerator(fake)

	order := &shopify.Order{
		Name:     "#1001",
		Customer: shopify.Customer{Phone: "+34600000000"},
	}

	g.Generate(context.Background(), Request{
		Intent:      classify.IntentOtherOrder,
		UserMessage: "what phone do you have on file?",
		Language:    classify.LanguageEnglish,
		Order:       order,
	})

	assert.Contains(t, fake.gotSystem, "+34600000000")
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"m", "M"},
		{"M", "M"},
		{"medium", "M"},
		{"Talla M", "M"},
		{"size large", "L"},
		{"xs", "XS"},
		{"2xl", "XXL"},
		{"38", "38"},
		{"grande", "L"},
		{"", SizeNotFound},
		{"banana", SizeNotFound},
		{"380", SizeNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSize(tt.in), tt.in)
	}
}
