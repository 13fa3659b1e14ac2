package score

import (
	"context"
	"errors"
	"math"
	"testing"
)

// fakeEmbedder maps each text to a fixed vector so cosine results are
// fully deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{1, 0, 0}
		}
		out[i] = v
	}
	return out, nil
}

type memoryCache struct {
	data map[string][]float32
	gets int
	puts int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]float32)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]float32, error) {
	m.gets++
	return m.data[key], nil
}

func (m *memoryCache) Put(_ context.Context, key string, embedding []float32) error {
	m.puts++
	m.data[key] = embedding
	return nil
}

func newTestScorer(t *testing.T, embedder *fakeEmbedder, cache EmbeddingCache) *Scorer {
	t.Helper()
	s, err := New(embedder, cache)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestKeywordRatio(t *testing.T) {
	s := newTestScorer(t, &fakeEmbedder{}, nil)

	tests := []struct {
		name       string
		reference  string
		submission string
		want       float64
	}{
		{"identical", "photosynthesis converts sunlight", "photosynthesis converts sunlight", 1.0},
		{"superset submission", "demand curve", "the demand curve slopes downward always", 1.0},
		{"no overlap", "gravity mass acceleration", "painting sculpture museum", 0.0},
		{"empty reference", "", "anything at all", 0.0},
		{"stopwords ignored", "the of and", "totally different words", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.keywordRatio(tt.reference, tt.submission)
			if got != tt.want {
				t.Errorf("keywordRatio(%q, %q) = %v, want %v", tt.reference, tt.submission, got, tt.want)
			}
		})
	}
}

func TestKeywordRatioLemmatization(t *testing.T) {
	s := newTestScorer(t, &fakeEmbedder{}, nil)

	// Inflected forms in the submission should match the reference lemmas.
	got := s.keywordRatio("cell divide", "cells dividing rapidly")
	if got != 1.0 {
		t.Errorf("lemmatized overlap = %v, want 1.0", got)
	}
}

func TestKeywordRatioDuplicateReferenceTerms(t *testing.T) {
	s := newTestScorer(t, &fakeEmbedder{}, nil)

	// Reference multiset: [energy, energy, transfer]. Submission matches
	// both distinct lemmas, so 2 of 3 reference tokens are covered.
	got := s.keywordRatio("energy energy transfer", "energy transfer")
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ratio = %v, want %v", got, want)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0.0},
		{"empty", nil, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"water boils at 100 degrees": {1, 0},
		"water boils at 100":         {1, 0},
	}}
	s := newTestScorer(t, emb, nil)

	res, err := s.Score(context.Background(), "water boils at 100 degrees", "water boils at 100")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if res.Keyword <= 0 || res.Keyword > 1 {
		t.Errorf("keyword out of range: %v", res.Keyword)
	}
	if math.Abs(res.Semantics-1.0) > 1e-9 {
		t.Errorf("semantics = %v, want 1.0 for identical vectors", res.Semantics)
	}
	if res.Tone == "" {
		t.Error("tone label missing")
	}
	if res.ToneScore < -1 || res.ToneScore > 1 {
		t.Errorf("tone score out of range: %v", res.ToneScore)
	}
}

func TestScoreEmbeddingFailureIsAtomic(t *testing.T) {
	s := newTestScorer(t, &fakeEmbedder{err: errors.New("provider down")}, nil)

	res, err := s.Score(context.Background(), "reference text", "submission text")
	if !errors.Is(err, ErrScoringFailed) {
		t.Fatalf("expected ErrScoringFailed, got %v", err)
	}
	if res != nil {
		t.Errorf("no partial result expected, got %+v", res)
	}
}

func TestEmbedUsesCache(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"hello": {0, 1, 0}}}
	cache := newMemoryCache()
	s := newTestScorer(t, emb, cache)

	first, err := s.embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := s.embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed (cached): %v", err)
	}

	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1", emb.calls)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
	if len(first) != len(second) || first[1] != second[1] {
		t.Errorf("cache returned different vector: %v vs %v", first, second)
	}
}

func TestClassifyTone(t *testing.T) {
	tests := []struct {
		polarity     float64
		subjectivity float64
		want         string
	}{
		{0.7, 0.7, ToneEnthusiasticPersonal},
		{0.7, 0.2, TonePositiveFactual},
		{0.1, 0.7, TonePersonalCritical},
		{0.1, 0.2, ToneNeutralFactual},
		{0.45, 0.7, ToneExpressiveEmotional},
		{0.45, 0.2, ToneFactualObjective},
		// Band edges: thresholds are strict inequalities.
		{0.6, 0.6, ToneFactualObjective},
		{0.3, 0.6, ToneFactualObjective},
		{-0.5, 0.9, TonePersonalCritical},
	}
	for _, tt := range tests {
		got := classifyTone(tt.polarity, tt.subjectivity)
		if got != tt.want {
			t.Errorf("classifyTone(%v, %v) = %q, want %q",
				tt.polarity, tt.subjectivity, got, tt.want)
		}
	}
}

func TestToneSubjectivityClamped(t *testing.T) {
	s := newTestScorer(t, &fakeEmbedder{}, nil)

	_, score := s.tone("I absolutely love this amazing wonderful fantastic answer!")
	if score < -1 || score > 1 {
		t.Errorf("tone score out of range: %v", score)
	}
}
