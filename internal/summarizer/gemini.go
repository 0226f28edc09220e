package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/commitpulse/internal/contract"
	"google.golang.org/genai"
)

// maxOutputTokens bounds the length of a generated narrative.
const maxOutputTokens = 500

// Gemini is a TextModel backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini model client. An empty model name selects the default model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = contract.DefaultGenAIModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate implements TextModel.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(0.3)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "text/plain",
		Temperature:       &temperature,
		MaxOutputTokens:   maxOutputTokens,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, config)
	if err != nil {
		return "", classifyError(err)
	}

	var out strings.Builder
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			out.WriteString(part.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("gemini returned no content")
	}
	return out.String(), nil
}

// classifyError shortens the common API failures.
func classifyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return fmt.Errorf("gemini rate limit exceeded: %w", err)
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return fmt.Errorf("gemini authentication failed: %w", err)
	case strings.Contains(msg, "500"), strings.Contains(msg, "502"), strings.Contains(msg, "503"):
		return fmt.Errorf("gemini service unavailable: %w", err)
	default:
		return fmt.Errorf("gemini API error: %w", err)
	}
}
