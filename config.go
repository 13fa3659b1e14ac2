package sheetcheck

import "github.com/sheetcheck/sheetcheck/llm"

// Config holds all configuration for the answer sheet checker.
type Config struct {
	// DBPath is the path to the SQLite database file used for the
	// extraction/evaluation audit log and the embedding cache.
	// Empty disables persistence entirely.
	DBPath string `json:"db_path"`

	// Transcription configures the remote vision transcription provider.
	Transcription llm.Config `json:"transcription"`

	// Embedding configures the sentence embedding provider used for the
	// semantic similarity signal.
	Embedding llm.Config `json:"embedding"`

	// EmbeddingDim must match the embedding model's output dimension.
	EmbeddingDim int `json:"embedding_dim"`

	// RasterTool is the binary used to rasterize PDF pages for
	// transcription. Availability is probed once at startup.
	RasterTool string `json:"raster_tool"`

	// RasterDPI controls rasterization resolution.
	RasterDPI int `json:"raster_dpi"`
}

// DefaultConfig returns a Config with sensible defaults. The transcription
// provider defaults to Gemini and requires an API key to be injected via
// config file or environment before use.
func DefaultConfig() Config {
	return Config{
		DBPath: "sheetcheck.db",
		Transcription: llm.Config{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Embedding: llm.Config{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		EmbeddingDim: 768,
		RasterTool:   "pdftoppm",
		RasterDPI:    150,
	}
}
