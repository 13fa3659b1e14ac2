package store

import "fmt"

// schemaSQL returns the DDL for all tables. embeddingDim controls the
// vec0 virtual table dimension and must match the embedding model.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
-- Audit log of completed extractions
CREATE TABLE IF NOT EXISTS extractions (
    id INTEGER PRIMARY KEY,
    filename TEXT NOT NULL,
    format TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    quality REAL DEFAULT 0,
    text TEXT NOT NULL,
    page_log JSON,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Audit log of completed evaluations
CREATE TABLE IF NOT EXISTS evaluations (
    id INTEGER PRIMARY KEY,
    keyword REAL NOT NULL,
    semantics REAL NOT NULL,
    tone TEXT NOT NULL,
    tone_score REAL NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Embedding cache: content-hash keys mapped into a vec0 table
CREATE TABLE IF NOT EXISTS embedding_keys (
    id INTEGER PRIMARY KEY,
    key TEXT NOT NULL UNIQUE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(
    key_id INTEGER PRIMARY KEY,
    embedding float[%d]
);

CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations(created_at);
`, embeddingDim)
}
