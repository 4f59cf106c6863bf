package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gericke98/happy-customer/internal/logger"
)

// ErrProvider marks a failed LLM call after all retries were spent.
var ErrProvider = errors.New("LLM_PROVIDER_ERROR")

type OpenAIClient struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	log        logger.Logger
}

func NewOpenAIClient(apiKey, model string, maxRetries int, retryDelay time.Duration, log logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log.With(map[string]interface{}{"component": "openai"}),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, msgs []Message, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: empty choices", ErrProvider)
			}
			return resp.Choices[0].Message.Content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("%w: %v", ErrProvider, err)
		}

		lastErr = err
		c.log.Warn("retrying LLM call", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return "", fmt.Errorf("%w: %v", ErrProvider, lastErr)
}

// isRetryable reports whether the failure is transient: rate limiting, server
// errors, or a transport failure that never produced an API response.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	// Network-level failure, no HTTP response at all.
	return true
}
