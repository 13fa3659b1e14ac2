// Package score compares a submitted answer against a reference answer
// using three independent signals: keyword overlap, semantic similarity,
// and tone classification. The three sub-computations never depend on one
// another's results, and a failure in any of them fails the whole
// evaluation: callers receive all three signals or none.
package score

import (
	"context"
	"errors"
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jonreiter/govader"

	"github.com/sheetcheck/sheetcheck/llm"
	"github.com/sheetcheck/sheetcheck/normalize"
)

// ErrScoringFailed wraps any sub-computation failure. No partial Result is
// ever returned alongside it.
var ErrScoringFailed = errors.New("score: scoring failed")

// Result bundles the three signals. Keyword is in [0,1]; Semantics is the
// cosine similarity in [-1,1]; ToneScore is in [-1,1].
type Result struct {
	Keyword   float64 `json:"keyword"`
	Semantics float64 `json:"semantics"`
	Tone      string  `json:"tone"`
	ToneScore float64 `json:"toneScore"`
}

// EmbeddingCache stores sentence embeddings keyed by content hash so the
// same reference answer is not re-embedded for every submission. Get
// returns (nil, nil) on a miss.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Put(ctx context.Context, key string, embedding []float32) error
}

// Scorer computes Results. It is safe for concurrent use: the lemmatizer
// and sentiment analyzer are read-only after construction and each call
// operates on request-scoped values only.
type Scorer struct {
	embedder llm.Embedder
	cache    EmbeddingCache
	lemmas   *golem.Lemmatizer
	vader    *govader.SentimentIntensityAnalyzer
}

// New creates a Scorer. cache may be nil to disable embedding caching.
func New(embedder llm.Embedder, cache EmbeddingCache) (*Scorer, error) {
	lemmas, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading lemmatizer dictionary: %w", err)
	}
	return &Scorer{
		embedder: embedder,
		cache:    cache,
		lemmas:   lemmas,
		vader:    govader.NewSentimentIntensityAnalyzer(),
	}, nil
}

// Score evaluates a submission against a reference answer. Both inputs are
// normalized internally; callers may pass raw or already-normalized text.
func (s *Scorer) Score(ctx context.Context, reference, submission string) (*Result, error) {
	ref := normalize.Clean(reference)
	sub := normalize.Clean(submission)

	keyword := s.keywordRatio(ref, sub)

	semantics, err := s.semanticSimilarity(ctx, ref, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: semantic similarity: %v", ErrScoringFailed, err)
	}

	tone, toneScore := s.tone(sub)

	return &Result{
		Keyword:   keyword,
		Semantics: semantics,
		Tone:      tone,
		ToneScore: toneScore,
	}, nil
}
