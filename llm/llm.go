// Package llm contains the clients for the two remote model services the
// checker depends on: vision transcription (recovering text from page
// images) and sentence embeddings (semantic similarity). Both are consumed
// as opaque text-in/text-out services over HTTP.
package llm

import (
	"context"
	"fmt"
)

// Transcriber recovers text from a single page image. Implementations send
// one synchronous request per image and never retry: a failed page is
// reported as an error value and the caller decides how to degrade.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte) (string, error)
}

// Embedder generates sentence embeddings for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config configures a remote model endpoint.
type Config struct {
	Provider string `json:"provider"` // gemini, ollama, openai, custom
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
}

// NewTranscriber creates a vision transcription client from configuration.
func NewTranscriber(cfg Config) (Transcriber, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGemini(cfg), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.Provider)
	}
}

// NewEmbedder creates an embedding client from configuration.
func NewEmbedder(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434"
		}
		return newEmbeddingClient(cfg, "/v1"), nil
	case "openai":
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com"
		}
		return newEmbeddingClient(cfg, "/v1"), nil
	case "gemini":
		// Gemini's OpenAI-compatible surface has no /v1 prefix.
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
		}
		return newEmbeddingClient(cfg, ""), nil
	case "custom":
		return newEmbeddingClient(cfg, "/v1"), nil
	case "":
		return nil, fmt.Errorf("embedding provider not specified")
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
