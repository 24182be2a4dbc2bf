// Package embed provides the optional embedding capability §9 calls
// for: absence must never change match correctness, only recall.
package embed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = openai.EmbeddingModelTextEmbedding3Small
)

// Config configures the OpenAI-backed embedding client.
type Config struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseURL    string        // optional, for tests
	HTTPClient *http.Client  // optional, for tests
}

// OpenAIProvider implements sections.EmbeddingProvider over OpenAI's
// embeddings endpoint. It has no per-process setup cost worth lazily
// deferring (unlike the OCR client), so the client is constructed
// eagerly in New.
type OpenAIProvider struct {
	model  string
	client openai.Client
}

// New constructs an OpenAIProvider. Per §9, the orchestrator builds
// one instance per process and reuses it across documents.
func New(cfg Config) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{model: cfg.Model, client: openai.NewClient(opts...)}
}

// Name identifies the provider for diagnostics.
func (p *OpenAIProvider) Name() string { return "openai" }

// Embed returns the embedding vector for text, satisfying
// sections.EmbeddingProvider.
func (p *OpenAIProvider) Embed(text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings request: empty response")
	}
	return resp.Data[0].Embedding, nil
}
