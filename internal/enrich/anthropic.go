package enrich

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/todocomb/internal/task"
)

// AnthropicProvider estimates tasks through the Anthropic Messages API.
type AnthropicProvider struct {
	inner        anthropic.Client
	model        anthropic.Model
	templatePath string
}

// NewAnthropicProvider creates an Anthropic-backed provider. apiKey defaults
// to the ANTHROPIC_API_KEY env var, model to Claude Sonnet.
func NewAnthropicProvider(apiKey, model, templatePath string) (*AnthropicProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.ModelClaudeSonnet4_6
	if model != "" {
		m = anthropic.Model(model)
	}

	return &AnthropicProvider{inner: inner, model: m, templatePath: templatePath}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Enrich sends one estimation prompt and decodes the JSON reply.
func (p *AnthropicProvider) Enrich(ctx context.Context, req Request) (*task.Enrichment, error) {
	prompt, err := RenderPrompt(req, p.templatePath)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := p.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(1024),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return parseEnrichment(text)
}
