package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeTranscriber struct {
	calls   int
	failOn  string // image payload that triggers an error
	replies map[string]string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, image []byte) (string, error) {
	f.calls++
	key := string(image)
	if key == f.failOn {
		return "", errors.New("provider unavailable")
	}
	if text, ok := f.replies[key]; ok {
		return text, nil
	}
	return "transcribed " + key, nil
}

func TestNewDocumentKinds(t *testing.T) {
	tests := []struct {
		filename string
		want     Kind
	}{
		{"sheet.pdf", KindPDF},
		{"SHEET.PDF", KindPDF},
		{"scan.png", KindImage},
		{"scan.jpeg", KindImage},
		{"photo.bmp", KindImage},
		{"essay.docx", KindWord},
		{"essay.doc", KindWord},
		{"notes.txt", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			doc, err := NewDocument(tt.filename, []byte("payload"))
			if err != nil {
				t.Fatalf("NewDocument: %v", err)
			}
			if doc.Kind != tt.want {
				t.Errorf("kind = %q, want %q", doc.Kind, tt.want)
			}
		})
	}
}

func TestNewDocumentUnsupported(t *testing.T) {
	for _, name := range []string{"virus.exe", "archive.zip", "noextension", "data.csv"} {
		_, err := NewDocument(name, nil)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("NewDocument(%q): expected ErrUnsupportedFormat, got %v", name, err)
		}
	}

	// The error message names the offending extension and the supported set.
	_, err := NewDocument("report.xyz", nil)
	if err == nil || !strings.Contains(err.Error(), "xyz") || !strings.Contains(err.Error(), "PDF") {
		t.Errorf("error should name extension and supported formats: %v", err)
	}
}

func TestExtractImage(t *testing.T) {
	ft := &fakeTranscriber{replies: map[string]string{"raw-image": "Answer:  42\n"}}
	e := New(ft, nil)

	doc, err := NewDocument("scan.jpg", []byte("raw-image"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	res, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if res.Text != "Answer: 42" {
		t.Errorf("text not normalized: %q", res.Text)
	}
	if len(res.Pages) != 1 || res.Pages[0].Method != MethodOCR {
		t.Errorf("unexpected page log: %+v", res.Pages)
	}
}

func TestExtractImageTranscriptionError(t *testing.T) {
	ft := &fakeTranscriber{failOn: "bad-image"}
	e := New(ft, nil)

	doc, _ := NewDocument("scan.jpg", []byte("bad-image"))
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatal("expected transcription error to surface for single-image request")
	}
}

func TestExtractImageNoTranscriber(t *testing.T) {
	e := New(nil, nil)
	doc, _ := NewDocument("scan.jpg", []byte("payload"))
	_, err := e.Extract(context.Background(), doc)
	if !errors.Is(err, ErrRasterUnavailable) {
		t.Fatalf("expected ErrRasterUnavailable, got %v", err)
	}
}

// buildDOCX assembles a minimal DOCX container around the given paragraphs.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := f.Write([]byte(sb.String())); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractWord(t *testing.T) {
	data := buildDOCX(t, "First paragraph.", "Second paragraph.")
	res, err := extractWord(data)
	if err != nil {
		t.Fatalf("extractWord: %v", err)
	}
	if res.Text != "First paragraph. Second paragraph." {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if len(res.Pages) != 1 || res.Pages[0].Method != MethodText {
		t.Errorf("unexpected page log: %+v", res.Pages)
	}
}

func TestExtractWordNotAZip(t *testing.T) {
	_, err := extractWord([]byte("this is not a zip archive"))
	if !errors.Is(err, ErrDocumentParse) {
		t.Fatalf("expected ErrDocumentParse, got %v", err)
	}
}

func TestExtractWordMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/other.xml")
	f.Write([]byte("<x/>"))
	zw.Close()

	_, err := extractWord(buf.Bytes())
	if !errors.Is(err, ErrDocumentParse) {
		t.Fatalf("expected ErrDocumentParse, got %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf8", []byte("Hello World"), "Hello World"},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, "hi"},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"windows-1252 fallback", []byte{'c', 'a', 'f', 0xE9}, "caf"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractPlainText(tt.data)
			if res.Text != tt.want {
				t.Errorf("text = %q, want %q", res.Text, tt.want)
			}
		})
	}
}
