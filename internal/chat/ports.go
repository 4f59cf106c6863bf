package chat

import (
	"context"
	"time"

	"github.com/gericke98/happy-customer/internal/answer"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/geocode"
	"github.com/gericke98/happy-customer/internal/shopify"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Shop struct {
	ID         string
	Name       string
	ReturnsURL string
}

type Ticket struct {
	ID        string
	ShopID    string
	Status    string
	CreatedAt time.Time
}

type Message struct {
	ID        int64
	TicketID  string
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

// Repo is the persistence boundary: tickets, messages, shops and the CORS
// origin allow-list.
type Repo interface {
	CreateTicket(ctx context.Context, shopID string) (*Ticket, error)
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	SaveMessage(ctx context.Context, msg *Message) error
	GetTicketMessages(ctx context.Context, ticketID string) ([]Message, error)
	AllowedOrigins(ctx context.Context) ([]string, error)
}

// IntentClassifier produces a resolved classification for one turn. It never
// fails; degraded input yields the default classification.
type IntentClassifier interface {
	Classify(ctx context.Context, message string, turns []classify.Turn) *classify.ClassifiedMessage
}

// AnswerGenerator writes the final reply. Failures degrade internally to a
// canned localized string.
type AnswerGenerator interface {
	Generate(ctx context.Context, req answer.Request) (string, bool)
}

// OrderLookup is the commerce-platform boundary.
type OrderLookup interface {
	GetOrder(ctx context.Context, orderNumber, email string) (*shopify.Order, error)
	GetProduct(ctx context.Context, handle string) (*shopify.Product, error)
}

// AddressValidator is the geocoding boundary.
type AddressValidator interface {
	Validate(ctx context.Context, address string) (*geocode.Result, error)
}

// Service orchestrates the pipeline: sanitize -> classify -> resolve ->
// intent handler -> answer -> persist.
type Service interface {
	Classify(ctx context.Context, message string, turns []classify.Turn) (*classify.ClassifiedMessage, error)
	ProcessMessage(ctx context.Context, message string, turns []classify.Turn, ticketID string) (string, error)
	Answer(ctx context.Context, req answer.Request) (string, bool)
	ValidateAddress(ctx context.Context, address string) (*geocode.Result, error)

	CreateTicket(ctx context.Context, shopID string) (*Ticket, error)
	TicketMessages(ctx context.Context, ticketID string) ([]Message, error)
	AddTicketMessage(ctx context.Context, ticketID string, sender Sender, text string) (*Message, error)
}
