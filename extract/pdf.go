package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/sheetcheck/sheetcheck/normalize"
)

const (
	// docTextThreshold is the aggregate digital-character count above which
	// the whole document is treated as born-digital and transcription is
	// skipped for every page.
	docTextThreshold = 100

	// pageTextThreshold is the per-page trimmed-character count above which
	// a page keeps its digital text on the fallback path.
	pageTextThreshold = 50
)

const (
	scannedPlaceholder = "[Page appears to be scanned. Rasterization support required for transcription.]"
	failedPlaceholder  = "This page could not be processed. It may contain images or non-standard formatting."
)

// extractPDF implements the hybrid digital/transcription pipeline. Digital
// text is always attempted first for every page; the remote transcriber is
// only consulted for pages the digital pass cannot cover, and only when the
// document as a whole is not clearly born-digital.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*Result, error) {
	pages, err := readPDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}

	if isDigital(pages) {
		slog.Debug("digital pdf detected", "pages", len(pages))
		return assembleDigital(pages), nil
	}

	slog.Debug("scanned pdf suspected", "pages", len(pages))
	return e.assembleHybrid(ctx, data, pages), nil
}

// isDigital reports whether the document as a whole is born-digital: the
// aggregate trimmed character count across all pages clears the document
// threshold. Digital documents never consult the transcriber.
func isDigital(pages []string) bool {
	aggregate := 0
	for _, p := range pages {
		aggregate += len(strings.TrimSpace(p))
	}
	return aggregate > docTextThreshold
}

// readPDFPages returns the embedded text of every page, in order. Pages
// whose text extraction fails yield an empty string; only a container-level
// failure is an error.
func readPDFPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that fails digital extraction is simply empty here;
			// the fallback path decides what becomes of it.
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// assembleDigital is the document fast path: every page uses its digital
// text, even pages individually below the page threshold.
func assembleDigital(pages []string) *Result {
	var parts []string
	log := make([]PageResult, len(pages))
	for i, text := range pages {
		log[i] = PageResult{Page: i + 1, Method: MethodText}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, pageBlock(i+1, MethodText, text))
	}
	return &Result{Text: strings.Join(parts, " "), Pages: log}
}

// assembleHybrid is the per-page fallback path: pages clearing the page
// threshold keep digital text, the rest are rasterized and transcribed.
// A single page's transcription failure degrades that page to a
// placeholder and never aborts the document.
func (e *Extractor) assembleHybrid(ctx context.Context, data []byte, pages []string) *Result {
	var images map[int][]byte
	canRaster := e.raster != nil && e.raster.Available() && e.transcriber != nil
	if canRaster {
		var err error
		images, err = e.raster.RenderPages(ctx, data)
		if err != nil {
			slog.Warn("pdf rasterization failed, degrading to digital text only", "error", err)
			canRaster = false
		}
	}

	parts := make([]string, 0, len(pages))
	log := make([]PageResult, len(pages))
	for i, text := range pages {
		n := i + 1
		trimmed := strings.TrimSpace(text)

		if len(trimmed) > pageTextThreshold {
			log[i] = PageResult{Page: n, Method: MethodText}
			parts = append(parts, pageBlock(n, MethodText, text))
			continue
		}

		if !canRaster {
			// Structural degradation: keep whatever digital text exists,
			// mark blank pages unrecoverable instead of failing the document.
			if trimmed != "" {
				log[i] = PageResult{Page: n, Method: MethodText}
				parts = append(parts, pageBlock(n, MethodText, text))
			} else {
				log[i] = PageResult{Page: n, Method: MethodFailed}
				parts = append(parts, pageBlock(n, MethodFailed, scannedPlaceholder))
			}
			continue
		}

		img, ok := images[n]
		if !ok {
			log[i] = PageResult{Page: n, Method: MethodFailed}
			parts = append(parts, pageBlock(n, MethodFailed, failedPlaceholder))
			continue
		}

		transcribed, err := e.transcriber.Transcribe(ctx, img)
		if err != nil {
			slog.Warn("page transcription failed", "page", n, "error", err)
			log[i] = PageResult{Page: n, Method: MethodFailed}
			parts = append(parts, pageBlock(n, MethodFailed, failedPlaceholder))
			continue
		}

		log[i] = PageResult{Page: n, Method: MethodOCR}
		parts = append(parts, pageBlock(n, MethodOCR, transcribed))
	}

	return &Result{Text: strings.Join(parts, " "), Pages: log}
}

// pageBlock renders one page's normalized text behind its page-boundary
// marker. The marker carries the page number and recovery method.
func pageBlock(page int, method Method, text string) string {
	marker := fmt.Sprintf("--- Page %d (%s) ---", page, method)
	cleaned := normalize.Clean(text)
	if cleaned == "" {
		return marker
	}
	return marker + " " + cleaned
}
