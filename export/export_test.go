package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sheetcheck/sheetcheck/store"
)

func TestEvaluationsXLSX(t *testing.T) {
	evals := []store.Evaluation{
		{ID: 1, Keyword: 0.8, Semantics: 0.9, Tone: "Factual & Objective", ToneScore: 0.1, CreatedAt: "2026-08-01 10:00:00"},
		{ID: 2, Keyword: 0.5, Semantics: 0.4, Tone: "Personal & Critical", ToneScore: -0.3, CreatedAt: "2026-08-02 11:00:00"},
	}

	data, err := EvaluationsXLSX(evals)
	if err != nil {
		t.Fatalf("EvaluationsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue("Evaluations", "A1")
	if err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if header != "ID" {
		t.Errorf("header A1 = %q, want ID", header)
	}

	tone, err := f.GetCellValue("Evaluations", "D3")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if tone != "Personal & Critical" {
		t.Errorf("cell D3 = %q, want tone of second row", tone)
	}

	rows, err := f.GetRows("Evaluations")
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected header plus 2 data rows, got %d", len(rows))
	}
}

func TestEvaluationsXLSXEmpty(t *testing.T) {
	data, err := EvaluationsXLSX(nil)
	if err != nil {
		t.Fatalf("EvaluationsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Evaluations")
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header row only, got %d rows", len(rows))
	}
}
