package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClassifierAppliesSettings(t *testing.T) {
	t.Parallel()

	c, err := NewGeminiClassifier(context.Background(), "gemini-1.5-flash", "test-key", 0.25)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.model.Temperature)
	assert.InDelta(t, 0.25, *c.model.Temperature, 1e-6)
	assert.Equal(t, "application/json", c.model.ResponseMIMEType)
	require.NotNil(t, c.model.SystemInstruction)
}

func TestReplyText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, replyText(nil))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"framing_direction": 0.3,`),
				genai.Text(` "language_intensity": 0.1, "sensationalism_score": 0}`),
			}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	text := replyText(resp)
	assert.Equal(t, `{"framing_direction": 0.3, "language_intensity": 0.1, "sensationalism_score": 0}`, text)

	framing, err := ParseFraming(text)
	assert.NoError(t, err)
	assert.Equal(t, 0.3, framing.FramingDirection)
}
