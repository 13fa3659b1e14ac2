// Package sheetcheck recovers the text of submitted answer sheets through
// a hybrid digital-extraction/transcription pipeline and scores recovered
// answers against reference answers with three independent similarity
// signals.
package sheetcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sheetcheck/sheetcheck/export"
	"github.com/sheetcheck/sheetcheck/extract"
	"github.com/sheetcheck/sheetcheck/llm"
	"github.com/sheetcheck/sheetcheck/normalize"
	"github.com/sheetcheck/sheetcheck/score"
	"github.com/sheetcheck/sheetcheck/store"
)

// Extraction is the outcome of recovering one uploaded document's text.
type Extraction struct {
	Filename string               `json:"filename"`
	Format   extract.Kind         `json:"format"`
	Size     int64                `json:"size"`
	Text     string               `json:"text"`
	Quality  float64              `json:"quality"`
	Pages    []extract.PageResult `json:"pages,omitempty"`
}

// Checker is the main entry point. Each call handles one request-scoped
// document or text pair; the Checker itself holds only immutable
// collaborators and is safe for concurrent use.
type Checker struct {
	extractor *extract.Extractor
	scorer    *score.Scorer
	raster    *extract.Rasterizer
	store     *store.Store // nil when persistence is disabled
}

// New wires a Checker from configuration. Rasterization availability is
// probed once here; the extractor branches on the result deterministically
// for every later request.
func New(cfg Config) (*Checker, error) {
	transcriber, err := llm.NewTranscriber(cfg.Transcription)
	if err != nil {
		return nil, fmt.Errorf("creating transcription client: %w", err)
	}

	embedder, err := llm.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.New(cfg.DBPath, cfg.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
	}

	var cache score.EmbeddingCache
	if st != nil {
		cache = st
	}
	scorer, err := score.New(embedder, cache)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, fmt.Errorf("creating scorer: %w", err)
	}

	raster := extract.NewRasterizer(cfg.RasterTool, cfg.RasterDPI)

	return &Checker{
		extractor: extract.New(transcriber, raster),
		scorer:    scorer,
		raster:    raster,
		store:     st,
	}, nil
}

// ExtractFile recovers the text of one uploaded file. The returned text is
// normalized; page order is preserved and the per-page log has one entry
// per source page.
func (c *Checker) ExtractFile(ctx context.Context, filename string, data []byte) (*Extraction, error) {
	doc, err := extract.NewDocument(filename, data)
	if err != nil {
		return nil, err
	}

	result, err := c.extractor.Extract(ctx, doc)
	if err != nil {
		if errors.Is(err, llm.ErrRequestFailed) || errors.Is(err, llm.ErrBadResponse) || errors.Is(err, llm.ErrEmptyResult) {
			return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
		}
		return nil, err
	}

	ex := &Extraction{
		Filename: filename,
		Format:   doc.Kind,
		Size:     int64(len(data)),
		Text:     result.Text,
		Quality:  normalize.QualityScore(result.Text),
		Pages:    result.Pages,
	}

	c.recordExtraction(ctx, ex)
	return ex, nil
}

// Evaluate scores a submission against a reference answer. The three
// signals are returned atomically: any sub-computation failure yields an
// error and no partial result.
func (c *Checker) Evaluate(ctx context.Context, reference, submission string) (*score.Result, error) {
	result, err := c.scorer.Score(ctx, reference, submission)
	if err != nil {
		return nil, err
	}

	c.recordEvaluation(ctx, result)
	return result, nil
}

// RecentExtractions lists stored extraction records, newest first. Returns
// an empty slice when persistence is disabled.
func (c *Checker) RecentExtractions(ctx context.Context, limit int) ([]store.Extraction, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.ListExtractions(ctx, limit)
}

// ExportEvaluations renders stored evaluation results as an XLSX workbook.
func (c *Checker) ExportEvaluations(ctx context.Context) ([]byte, error) {
	var evals []store.Evaluation
	if c.store != nil {
		var err error
		evals, err = c.store.ListEvaluations(ctx, 0)
		if err != nil {
			return nil, err
		}
	}
	return export.EvaluationsXLSX(evals)
}

// TranscriptionAvailable reports whether scanned pages can be rasterized
// for transcription in this environment.
func (c *Checker) TranscriptionAvailable() bool {
	return c.raster != nil && c.raster.Available()
}

// Close releases held resources.
func (c *Checker) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// recordExtraction persists an audit record. Persistence failures are
// logged, never surfaced: extraction already succeeded.
func (c *Checker) recordExtraction(ctx context.Context, ex *Extraction) {
	if c.store == nil {
		return
	}
	pageLog, _ := json.Marshal(ex.Pages)
	_, err := c.store.InsertExtraction(ctx, store.Extraction{
		Filename:  ex.Filename,
		Format:    string(ex.Format),
		SizeBytes: ex.Size,
		Quality:   ex.Quality,
		Text:      ex.Text,
		PageLog:   string(pageLog),
	})
	if err != nil {
		slog.Warn("recording extraction failed", "filename", ex.Filename, "error", err)
	}
}

func (c *Checker) recordEvaluation(ctx context.Context, r *score.Result) {
	if c.store == nil {
		return
	}
	_, err := c.store.InsertEvaluation(ctx, store.Evaluation{
		Keyword:   r.Keyword,
		Semantics: r.Semantics,
		Tone:      r.Tone,
		ToneScore: r.ToneScore,
	})
	if err != nil {
		slog.Warn("recording evaluation failed", "error", err)
	}
}
