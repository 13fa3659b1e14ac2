// Package store persists extraction and evaluation records in SQLite and
// caches sentence embeddings in a sqlite-vec virtual table. Extraction and
// scoring do not depend on it: the store is an audit log plus a cache, and
// every method is safe to skip when persistence is disabled.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Extraction is a row in the extractions table.
type Extraction struct {
	ID        int64   `json:"id"`
	Filename  string  `json:"filename"`
	Format    string  `json:"format"`
	SizeBytes int64   `json:"size_bytes"`
	Quality   float64 `json:"quality"`
	Text      string  `json:"text"`
	PageLog   string  `json:"page_log,omitempty"` // JSON array of per-page methods
	CreatedAt string  `json:"created_at"`
}

// Evaluation is a row in the evaluations table.
type Evaluation struct {
	ID        int64   `json:"id"`
	Keyword   float64 `json:"keyword"`
	Semantics float64 `json:"semantics"`
	Tone      string  `json:"tone"`
	ToneScore float64 `json:"tone_score"`
	CreatedAt string  `json:"created_at"`
}

// Store wraps the SQLite database for all persistence.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema, including the sqlite-vec embedding cache table.
func New(dbPath string, embeddingDim int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, embeddingDim: embeddingDim}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertExtraction records a completed extraction.
func (s *Store) InsertExtraction(ctx context.Context, e Extraction) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (filename, format, size_bytes, quality, text, page_log)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Filename, e.Format, e.SizeBytes, e.Quality, e.Text, e.PageLog)
	if err != nil {
		return 0, fmt.Errorf("inserting extraction: %w", err)
	}
	return res.LastInsertId()
}

// ListExtractions returns the most recent extractions, newest first.
func (s *Store) ListExtractions(ctx context.Context, limit int) ([]Extraction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, format, size_bytes, quality, text, page_log, created_at
		FROM extractions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var e Extraction
		var pageLog sql.NullString
		if err := rows.Scan(&e.ID, &e.Filename, &e.Format, &e.SizeBytes,
			&e.Quality, &e.Text, &pageLog, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.PageLog = pageLog.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertEvaluation records a completed evaluation.
func (s *Store) InsertEvaluation(ctx context.Context, e Evaluation) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (keyword, semantics, tone, tone_score)
		VALUES (?, ?, ?, ?)`,
		e.Keyword, e.Semantics, e.Tone, e.ToneScore)
	if err != nil {
		return 0, fmt.Errorf("inserting evaluation: %w", err)
	}
	return res.LastInsertId()
}

// ListEvaluations returns the most recent evaluations, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, semantics, tone, tone_score, created_at
		FROM evaluations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.ID, &e.Keyword, &e.Semantics, &e.Tone,
			&e.ToneScore, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns a cached embedding by content-hash key, or (nil, nil) on a
// cache miss. Satisfies score.EmbeddingCache.
func (s *Store) Get(ctx context.Context, key string) ([]float32, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM embedding_keys WHERE key = ?", key).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var blob []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT embedding FROM vec_embeddings WHERE key_id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deserializeFloat32(blob), nil
}

// Put stores an embedding under a content-hash key. Satisfies
// score.EmbeddingCache.
func (s *Store) Put(ctx context.Context, key string, embedding []float32) error {
	if len(embedding) != s.embeddingDim {
		return fmt.Errorf("embedding dimension %d does not match store dimension %d",
			len(embedding), s.embeddingDim)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO embedding_keys (key) VALUES (?)", key)
	if err != nil {
		return err
	}

	// LastInsertId is stale on an ignored insert, so the row count is the
	// only reliable signal that the key already existed.
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	var id int64
	if affected == 1 {
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		if err := tx.QueryRowContext(ctx,
			"SELECT id FROM embedding_keys WHERE key = ?", key).Scan(&id); err != nil {
			return err
		}
	}

	// vec0 virtual tables reject REPLACE conflict resolution; delete then
	// insert to overwrite.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM vec_embeddings WHERE key_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO vec_embeddings (key_id, embedding) VALUES (?, ?)",
		id, serializeFloat32(embedding)); err != nil {
		return err
	}
	return tx.Commit()
}

// serializeFloat32 packs a vector into the little-endian blob format
// sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func deserializeFloat32(blob []byte) []float32 {
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v
}
