package chat

import (
	"context"
	"errors"
	"time"

	"github.com/gericke98/happy-customer/internal/answer"
	"github.com/gericke98/happy-customer/internal/classify"
	"github.com/gericke98/happy-customer/internal/geocode"
	"github.com/gericke98/happy-customer/internal/logger"
	"github.com/gericke98/happy-customer/internal/metrics"
)

var (
	ErrClassificationTimeout = errors.New("CLASSIFICATION_TIMEOUT")
	ErrTicketNotFound        = errors.New("TICKET_NOT_FOUND")
)

const (
	classifyTimeout = 30 * time.Second
	processTimeout  = 30 * time.Second
)

type service struct {
	repo       Repo
	classifier IntentClassifier
	generator  AnswerGenerator
	orders     OrderLookup
	addresses  AddressValidator
	sizeCharts string
	log        logger.Logger
}

func NewService(
	repo Repo,
	classifier IntentClassifier,
	generator AnswerGenerator,
	orders OrderLookup,
	addresses AddressValidator,
	sizeCharts string,
	log logger.Logger,
) Service {
	return &service{
		repo:       repo,
		classifier: classifier,
		generator:  generator,
		orders:     orders,
		addresses:  addresses,
		sizeCharts: sizeCharts,
		log:        log.With(map[string]interface{}{"component": "chat"}),
	}
}

// Classify races the classification against a timer. The classifier itself
// never fails; the only error out of here is the timeout.
func (s *service) Classify(ctx context.Context, message string, turns []classify.Turn) (*classify.ClassifiedMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	done := make(chan *classify.ClassifiedMessage, 1)
	go func() {
		done <- s.classifier.Classify(ctx, message, turns)
	}()

	select {
	case cm := <-done:
		return cm, nil
	case <-ctx.Done():
		// The in-flight call keeps running in the background; we only stop
		// waiting for it.
		return nil, ErrClassificationTimeout
	}
}

// ProcessMessage runs the whole pipeline for one inbound chat message and
// returns the reply text. When a ticket is supplied, both sides of the
// exchange are persisted.
func (s *service) ProcessMessage(ctx context.Context, message string, turns []classify.Turn, ticketID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	cm, err := s.Classify(ctx, message, turns)
	if err != nil {
		return "", err
	}

	metrics.ResolvedIntents.WithLabelValues(string(cm.Intent)).Inc()
	s.log.Info("message classified", map[string]interface{}{
		"intent":   string(cm.Intent),
		"language": cm.Language,
	})

	reply := s.dispatch(ctx, cm, message, turns)

	if ticketID != "" {
		s.persistExchange(ctx, ticketID, message, reply)
	}

	return reply, nil
}

// persistExchange saves the user message and the bot reply. Persistence is
// not retried: there is no idempotency key, a blind retry could double-write.
func (s *service) persistExchange(ctx context.Context, ticketID, userText, botText string) {
	if err := s.repo.SaveMessage(ctx, &Message{TicketID: ticketID, Sender: SenderUser, Text: userText}); err != nil {
		s.log.Error("persist user message failed", map[string]interface{}{
			"ticketId": ticketID,
			"error":    err.Error(),
		})
		return
	}
	if err := s.repo.SaveMessage(ctx, &Message{TicketID: ticketID, Sender: SenderBot, Text: botText}); err != nil {
		s.log.Error("persist bot reply failed", map[string]interface{}{
			"ticketId": ticketID,
			"error":    err.Error(),
		})
	}
}

func (s *service) Answer(ctx context.Context, req answer.Request) (string, bool) {
	reply, cached := s.generator.Generate(ctx, req)
	if cached {
		metrics.AnswerCacheHits.Inc()
	}
	return reply, cached
}

func (s *service) ValidateAddress(ctx context.Context, address string) (*geocode.Result, error) {
	return s.addresses.Validate(ctx, address)
}

func (s *service) CreateTicket(ctx context.Context, shopID string) (*Ticket, error) {
	return s.repo.CreateTicket(ctx, shopID)
}

func (s *service) TicketMessages(ctx context.Context, ticketID string) ([]Message, error) {
	if _, err := s.repo.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.GetTicketMessages(ctx, ticketID)
}

func (s *service) AddTicketMessage(ctx context.Context, ticketID string, sender Sender, text string) (*Message, error) {
	if _, err := s.repo.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	msg := &Message{TicketID: ticketID, Sender: sender, Text: text}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
