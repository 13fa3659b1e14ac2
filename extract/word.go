package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/sheetcheck/sheetcheck/normalize"
)

// Word document XML structures (simplified: paragraph text only).
type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []string `xml:"t"`
}

// extractWord reads the paragraphs of a DOCX (a ZIP containing
// word/document.xml) in document order. No transcription is involved:
// word-processor files always carry digital text.
func extractWord(data []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening DOCX: %v", ErrDocumentParse, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found", ErrDocumentParse)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening document.xml: %v", ErrDocumentParse, err)
	}
	defer rc.Close()

	xmlData, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document.xml: %v", ErrDocumentParse, err)
	}

	var doc wordDocument
	if err := xml.Unmarshal(xmlData, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing document.xml: %v", ErrDocumentParse, err)
	}

	var b strings.Builder
	for _, para := range doc.Body.Paragraphs {
		for _, run := range para.Runs {
			for _, t := range run.Text {
				b.WriteString(t)
			}
		}
		b.WriteString("\n")
	}

	return &Result{
		Text:  normalize.Clean(b.String()),
		Pages: []PageResult{{Page: 1, Method: MethodText}},
	}, nil
}
