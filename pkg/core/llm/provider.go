// Package llm abstracts the model providers used for news sentiment
// analysis.
package llm

import (
	"context"
	"fmt"
)

// Provider is one model backend. Options carry provider-specific knobs
// (model name, api_key override, json mode).
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// NewProvider resolves a provider by configured name.
func NewProvider(name string) (Provider, error) {
	switch name {
	case "gemini", "":
		return &GeminiProvider{}, nil
	case "deepseek":
		return NewDeepSeekProvider(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
