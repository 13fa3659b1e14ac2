// Package extract recovers the textual content of submitted documents.
// It routes an uploaded byte blob to the correct extraction path by
// declared file type and, for paginated documents, decides per page
// whether the embedded digital text is trustworthy or the page must be
// rasterized and transcribed remotely.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sheetcheck/sheetcheck/llm"
)

var (
	// ErrUnsupportedFormat is returned for file extensions outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("extract: unsupported file format")

	// ErrDocumentParse is returned when a document container cannot be
	// opened or parsed. Per-page failures never produce this error.
	ErrDocumentParse = errors.New("extract: document parsing failed")

	// ErrRasterUnavailable indicates the rasterizing tool is missing from
	// the environment.
	ErrRasterUnavailable = errors.New("extract: rasterization unavailable")
)

// Kind is the declared type of an uploaded document.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindWord  Kind = "word"
	KindText  Kind = "text"
)

// SupportedExtensions lists every extension the dispatcher accepts, in the
// order reported to clients.
var SupportedExtensions = []string{"pdf", "png", "jpg", "jpeg", "gif", "bmp", "docx", "doc", "txt"}

var kindByExtension = map[string]Kind{
	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"gif":  KindImage,
	"bmp":  KindImage,
	"pdf":  KindPDF,
	"docx": KindWord,
	"doc":  KindWord,
	"txt":  KindText,
}

// Method records how a page's text was recovered.
type Method string

const (
	// MethodText means the page's embedded digital text was used.
	MethodText Method = "Text"

	// MethodOCR means the page was rasterized and transcribed remotely.
	MethodOCR Method = "OCR"

	// MethodFailed means neither path recovered text; the page's output is
	// an explanatory placeholder.
	MethodFailed Method = "Failed"
)

// Document is an immutable uploaded file: payload plus declared kind.
// Its lifecycle is request-scoped.
type Document struct {
	Name string
	Kind Kind
	Data []byte
}

// PageResult tags one page with the recovery method used for it.
type PageResult struct {
	Page   int    `json:"page"`
	Method Method `json:"method"`
}

// Result is the outcome of extracting one document. Text is normalized
// and pages appear in document order; Pages has exactly one entry per
// source page.
type Result struct {
	Text  string       `json:"text"`
	Pages []PageResult `json:"pages,omitempty"`
}

// NewDocument builds a Document from a filename and payload, deriving the
// kind from the extension (case-insensitive). Unsupported extensions fail
// fast with an error naming the extension and the supported set.
func NewDocument(name string, data []byte) (Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	kind, ok := kindByExtension[ext]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.ToUpper(strings.Join(SupportedExtensions, ", ")))
	}
	return Document{Name: name, Kind: kind, Data: data}, nil
}

// Extractor routes documents to the per-kind extraction paths. The
// transcriber and rasterizer are injected so tests can substitute fakes;
// rasterizer availability is a capability resolved once at startup.
type Extractor struct {
	transcriber llm.Transcriber
	raster      *Rasterizer
}

// New creates an Extractor. raster may be nil when rasterization support
// is not configured at all.
func New(transcriber llm.Transcriber, raster *Rasterizer) *Extractor {
	return &Extractor{transcriber: transcriber, raster: raster}
}

// Extract recovers the text of one document. The returned text has passed
// through normalization; callers store or compare it as-is.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*Result, error) {
	switch doc.Kind {
	case KindImage:
		return e.extractImage(ctx, doc.Data)
	case KindPDF:
		return e.extractPDF(ctx, doc.Data)
	case KindWord:
		return extractWord(doc.Data)
	case KindText:
		return extractPlainText(doc.Data), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Kind)
	}
}
