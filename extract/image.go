package extract

import (
	"context"
	"fmt"

	"github.com/sheetcheck/sheetcheck/normalize"
)

// extractImage treats a standalone image upload as a single-page document:
// there is no digital text to try, so the page goes straight to
// transcription. Unlike the multi-page path, a transcription failure here
// is the whole request failing and is surfaced to the caller.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (*Result, error) {
	if e.transcriber == nil {
		return nil, fmt.Errorf("%w: no transcription provider configured", ErrRasterUnavailable)
	}

	text, err := e.transcriber.Transcribe(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("transcribing image: %w", err)
	}

	return &Result{
		Text:  normalize.Clean(text),
		Pages: []PageResult{{Page: 1, Method: MethodOCR}},
	}, nil
}
