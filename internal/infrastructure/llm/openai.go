package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sashabaranov/go-openai"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// OpenAIClassifier implements ports.Classifier against OpenAI-compatible chat APIs.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ ports.Classifier = (*OpenAIClassifier)(nil)

// NewOpenAIClassifier builds a classifier for model. Endpoint is the API base
// URL, e.g. https://api.openai.com/v1; empty keeps the library default.
func NewOpenAIClassifier(endpoint, model, apiKey string, temperature float64, timeout time.Duration) *OpenAIClassifier {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		clientCfg.BaseURL = strings.TrimSuffix(endpoint, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClassifier{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: float32(temperature),
	}
}

// Classify asks the model for the article's framing.
func (c *OpenAIClassifier) Classify(ctx context.Context, headline, text string) (domain.ExternalFraming, error) {
	if c == nil || c.client == nil || c.model == "" {
		return domain.ExternalFraming{}, backoff.Permanent(domain.ErrClassifierUnavailable)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(headline, text)},
		},
	})
	if err != nil {
		err = fmt.Errorf("chat completion: %w", err)
		if permanentStatus(statusOf(err)) {
			return domain.ExternalFraming{}, backoff.Permanent(err)
		}
		return domain.ExternalFraming{}, err
	}

	if len(resp.Choices) == 0 {
		return domain.ExternalFraming{}, fmt.Errorf("%w: no choices in response", domain.ErrInvalidFraming)
	}
	return ParseFraming(resp.Choices[0].Message.Content)
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// permanentStatus reports client errors that retrying cannot fix. Rate limits
// and server errors stay retryable.
func permanentStatus(code int) bool {
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests
}
