package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash-exp"

// GeminiProvider implements Provider for Google's Gemini models via the
// official GenAI SDK.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate sends a generateContent request to the Gemini API.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, systemPrompt string, opts Options) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := p.Model
	if opts.Model != "" {
		model = opts.Model
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	temp := opts.Temperature
	if temp == 0 {
		temp = 0.1
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	result, err := client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	return result.Text(), nil
}
