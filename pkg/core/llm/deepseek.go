package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const (
	deepSeekURL          = "https://api.deepseek.com/chat/completions"
	defaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekProvider implements Provider against the DeepSeek chat-completions
// API over plain HTTP.
type DeepSeekProvider struct {
	Model string
}

var _ Provider = (*DeepSeekProvider)(nil)

type deepSeekMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type deepSeekRequest struct {
	Messages       []deepSeekMessage `json:"messages"`
	Model          string            `json:"model"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
}

type deepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

func (p *DeepSeekProvider) Generate(ctx context.Context, prompt string, systemPrompt string, opts Options) (string, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
	}

	model := p.Model
	if opts.Model != "" {
		model = opts.Model
	}
	if model == "" {
		model = defaultDeepSeekModel
	}

	reqBody := deepSeekRequest{
		Messages: []deepSeekMessage{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Model:       model,
		MaxTokens:   4096,
		Temperature: 1.0,
	}
	reqBody.ResponseFormat.Type = "text"
	if opts.JSONMode {
		reqBody.ResponseFormat.Type = "json_object"
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = float64(opts.Temperature)
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal deepseek request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", deepSeekURL, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create deepseek request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek API call failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read deepseek response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek API error: status=%d body=%s", res.StatusCode, string(body))
	}

	var response deepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal deepseek response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}
