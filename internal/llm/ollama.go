package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	infraerrors "github.com/visiona/review-classifier/infrastructure/errors"
	infrahttp "github.com/visiona/review-classifier/infrastructure/http"
)

const (
	// DefaultOllamaURL is the local Ollama generate endpoint.
	DefaultOllamaURL = "http://localhost:11434/api/generate"
	// DefaultOllamaModel is used when no model is configured.
	DefaultOllamaModel = "llama3"
)

func init() {
	Register(ProviderOllama, func(cfg Config) (Generator, error) {
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, httpClient(cfg)), nil
	})
}

// Ollama calls a non-streaming Ollama /api/generate endpoint.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

// NewOllama creates an Ollama backend. Empty url and model take the defaults;
// a nil client uses the shared transport defaults.
func NewOllama(url, model string, client *http.Client) *Ollama {
	if url == "" {
		url = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if client == nil {
		client = infrahttp.NewClient(nil)
	}
	return &Ollama{url: url, model: model, client: client}
}

func (o *Ollama) Name() string { return ProviderOllama }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response *string `json:"response"`
}

// Generate posts prompt and returns the "response" field of the reply.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", &CallError{Provider: ProviderOllama, Kind: FailureNetwork, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", &CallError{Provider: ProviderOllama, Kind: FailureNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", transportError(ctx, ProviderOllama, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if statusErr := infraerrors.ParseHTTPError(resp); statusErr != nil {
		return "", &CallError{Provider: ProviderOllama, Kind: FailureStatus, Err: statusErr}
	}

	var out ollamaResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		if ctx.Err() != nil {
			return "", transportError(ctx, ProviderOllama, decodeErr)
		}
		return "", &CallError{Provider: ProviderOllama, Kind: FailureDecode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if out.Response == nil {
		return "", &CallError{Provider: ProviderOllama, Kind: FailureDecode, Err: errors.New("response field missing")}
	}
	if *out.Response == "" {
		return "", &CallError{Provider: ProviderOllama, Kind: FailureEmpty}
	}

	return *out.Response, nil
}

func httpClient(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Timeout})
}
