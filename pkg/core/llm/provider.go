// Package llm abstracts the model providers the extraction and narrative
// collaborators run against.
package llm

import (
	"context"
)

// Options tune a single generation call.
type Options struct {
	Model       string  // provider-specific model name, "" for the default
	JSONMode    bool    // ask the model for a strict JSON object reply
	Temperature float32 // 0 means provider default
	MaxTokens   int     // 0 means provider default
}

// Provider is the interface all model providers implement.
type Provider interface {
	// Generate sends one prompt and returns the model's text reply.
	Generate(ctx context.Context, prompt string, systemPrompt string, opts Options) (string, error)
	// Name identifies the provider in logs and config.
	Name() string
}
