// Package export renders stored evaluation results as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sheetcheck/sheetcheck/store"
)

// EvaluationsXLSX returns an XLSX workbook (as bytes) listing evaluation
// results, one row per evaluation.
func EvaluationsXLSX(evals []store.Evaluation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Evaluations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Keyword Ratio", "Semantic Similarity", "Tone", "Tone Score", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, e := range evals {
		values := []interface{}{e.ID, e.Keyword, e.Semantics, e.Tone, e.ToneScore, e.CreatedAt}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
