package score

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
)

// semanticSimilarity embeds both texts and returns their cosine
// similarity. Embeddings are fetched from the cache when possible; cache
// failures are logged and treated as misses, never as scoring failures.
func (s *Scorer) semanticSimilarity(ctx context.Context, reference, submission string) (float64, error) {
	if s.embedder == nil {
		return 0, fmt.Errorf("no embedding provider configured")
	}

	refVec, err := s.embed(ctx, reference)
	if err != nil {
		return 0, err
	}
	subVec, err := s.embed(ctx, submission)
	if err != nil {
		return 0, err
	}

	return cosineSimilarity(refVec, subVec), nil
}

func (s *Scorer) embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingKey(text)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("embedding cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embedder returned no vector")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, vecs[0]); err != nil {
			slog.Warn("embedding cache write failed", "error", err)
		}
	}
	return vecs[0], nil
}

func embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// in [-1,1]. Zero vectors and dimension mismatches yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
