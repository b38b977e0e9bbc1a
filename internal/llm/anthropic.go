package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = string(anthropic.ModelClaudeHaiku4_5)

// anthropicMaxTokens caps the answer. A verdict is one short line.
const anthropicMaxTokens = 128

func init() {
	Register(ProviderAnthropic, func(cfg Config) (Generator, error) {
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("anthropic api key is required")
		}

		opts := []option.RequestOption{
			option.WithAPIKey(cfg.AnthropicAPIKey),
			option.WithHTTPClient(httpClient(cfg)),
		}
		if cfg.AnthropicBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.AnthropicBaseURL))
		}
		return NewAnthropic(cfg.AnthropicModel, opts...), nil
	})
}

// Anthropic sends the prompt as a single user message to the Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a Messages API backend. The SDK's automatic retries
// are disabled unless opts turn them back on.
func NewAnthropic(model string, opts ...option.RequestOption) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Anthropic{client: &client, model: anthropic.Model(model)}
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

// Generate returns the concatenated text blocks of the reply.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &CallError{Provider: ProviderAnthropic, Kind: FailureStatus, Err: err}
		}
		if ctx.Err() == nil && isDecodeError(err) {
			return "", &CallError{Provider: ProviderAnthropic, Kind: FailureDecode, Err: err}
		}
		return "", transportError(ctx, ProviderAnthropic, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &CallError{Provider: ProviderAnthropic, Kind: FailureEmpty,
			Err: fmt.Errorf("no text in %d content blocks", len(resp.Content))}
	}
	return b.String(), nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
