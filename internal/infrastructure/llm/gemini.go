package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// GeminiClassifier implements ports.Classifier with Google's Gemini models.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ ports.Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier opens a Gemini client; extra options (endpoint, HTTP
// client) are appended after the API key.
func NewGeminiClassifier(ctx context.Context, model, apiKey string, temperature float64, opts ...option.ClientOption) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	gm := client.GenerativeModel(model)
	gm.SetTemperature(float32(temperature))
	gm.ResponseMIMEType = "application/json"
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}

	return &GeminiClassifier{client: client, model: gm}, nil
}

// Close releases the underlying client.
func (c *GeminiClassifier) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Classify asks Gemini for the article's framing.
func (c *GeminiClassifier) Classify(ctx context.Context, headline, text string) (domain.ExternalFraming, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(BuildPrompt(headline, text)))
	if err != nil {
		return domain.ExternalFraming{}, fmt.Errorf("generate content: %w", err)
	}
	return ParseFraming(replyText(resp))
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
