package sheetcheck

import (
	"errors"

	"github.com/sheetcheck/sheetcheck/extract"
	"github.com/sheetcheck/sheetcheck/score"
)

// Sentinel errors surfaced by the Checker. The extraction and scoring
// sentinels are re-exported from their producing packages so callers can
// match with errors.Is against either name.
var (
	// ErrUnsupportedFormat is returned for file extensions outside the
	// supported set.
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat

	// ErrDocumentParse is returned when a document container (PDF, DOCX)
	// cannot be opened or parsed. Per-page failures degrade to placeholder
	// text instead.
	ErrDocumentParse = extract.ErrDocumentParse

	// ErrRasterUnavailable is returned when transcription is required but
	// cannot run in this environment.
	ErrRasterUnavailable = extract.ErrRasterUnavailable

	// ErrTranscription is returned when the remote transcription service
	// fails for a single-image request (transport error, non-success
	// status, malformed or empty body).
	ErrTranscription = errors.New("sheetcheck: transcription failed")

	// ErrScoringFailed is returned when any scoring sub-computation fails.
	// No partial score is ever returned.
	ErrScoringFailed = score.ErrScoringFailed
)
