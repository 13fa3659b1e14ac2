package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/sheetcheck/sheetcheck"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := sheetcheck.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("SHEETCHECK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SHEETCHECK_TRANSCRIBE_BASE_URL"); v != "" {
		cfg.Transcription.BaseURL = v
	}
	if v := os.Getenv("SHEETCHECK_TRANSCRIBE_API_KEY"); v != "" {
		cfg.Transcription.APIKey = v
	}
	if v := os.Getenv("SHEETCHECK_TRANSCRIBE_MODEL"); v != "" {
		cfg.Transcription.Model = v
	}
	if v := os.Getenv("SHEETCHECK_EMBED_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("SHEETCHECK_EMBED_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("SHEETCHECK_EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("SHEETCHECK_EMBED_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("SHEETCHECK_EMBED_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbeddingDim = n
		}
	}
	if v := os.Getenv("SHEETCHECK_RASTER_TOOL"); v != "" {
		cfg.RasterTool = v
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.Transcription.APIKey == "" && cfg.Transcription.Provider == "gemini" {
		cfg.Transcription.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			cfg.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	apiKey := os.Getenv("SHEETCHECK_API_KEY")
	corsOrigins := os.Getenv("SHEETCHECK_CORS_ORIGINS")

	checker, err := sheetcheck.New(cfg)
	if err != nil {
		slog.Error("creating checker", "error", err)
		os.Exit(1)
	}
	defer checker.Close()

	h := newHandler(checker)
	r := mux.NewRouter()

	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/extractFileText", h.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/extractFileText/", h.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/evaluation", h.handleEvaluation).Methods(http.MethodPost)
	r.HandleFunc("/evaluation/", h.handleEvaluation).Methods(http.MethodPost)
	r.HandleFunc("/extractions", h.handleListExtractions).Methods(http.MethodGet)
	r.HandleFunc("/evaluations/export", h.handleExportEvaluations).Methods(http.MethodGet)

	// Middleware chain: recovery -> cors -> auth -> request id -> logging -> router
	var handler http.Handler = r
	handler = logMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0, // transcription of large scans can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr,
			"transcription_available", checker.TranscriptionAvailable())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
