package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Runner executes external commands. It exists so tests can stub the
// rasterizing tool.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", errb.String(),
		)
	}
	return []byte(out.String()), []byte(errb.String()), err
}

// Rasterizer renders PDF pages to JPEG images via an external tool
// (pdftoppm by default). Whether the tool exists is resolved once at
// construction; callers branch on Available instead of discovering the
// absence mid-request.
type Rasterizer struct {
	tool      string
	dpi       int
	runner    Runner
	available bool
}

// NewRasterizer probes for the tool and returns a Rasterizer whose
// Available method reports the result.
func NewRasterizer(tool string, dpi int) *Rasterizer {
	if tool == "" {
		tool = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 150
	}
	_, err := exec.LookPath(tool)
	if err != nil {
		slog.Warn("rasterization tool not found, scanned pages will not be transcribed", "tool", tool)
	}
	return &Rasterizer{tool: tool, dpi: dpi, runner: execRunner{}, available: err == nil}
}

// NewRasterizerWithRunner is like NewRasterizer but with an injected
// runner, for tests.
func NewRasterizerWithRunner(tool string, dpi int, runner Runner, available bool) *Rasterizer {
	return &Rasterizer{tool: tool, dpi: dpi, runner: runner, available: available}
}

// Available reports whether the rasterizing tool can run in this
// environment.
func (r *Rasterizer) Available() bool { return r.available }

// RenderPages renders every page of the PDF to a JPEG, returning images
// keyed by 1-based page number.
func (r *Rasterizer) RenderPages(ctx context.Context, pdfData []byte) (map[int][]byte, error) {
	if !r.available {
		return nil, ErrRasterUnavailable
	}

	tmpDir, err := os.MkdirTemp("", "sheetcheck-raster-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -jpeg input.pdf <tmp>/page
	if _, stderr, err := r.runner.Run(ctx, r.tool, "-r", strconv.Itoa(r.dpi), "-jpeg", pdfPath, prefix); err != nil {
		return nil, fmt.Errorf("rendering pages: %w (%s)", err, strings.TrimSpace(string(stderr)))
	}

	matches, _ := filepath.Glob(prefix + "-*.jpg")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("rasterizer produced no images")
	}

	images := make(map[int][]byte, len(matches))
	for _, path := range matches {
		n, ok := pageNumberFromFile(path)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("reading rendered page", "path", path, "error", err)
			continue
		}
		images[n] = data
	}
	return images, nil
}

// pageNumberFromFile parses the trailing page number pdftoppm appends to
// the output prefix ("page-1.jpg", "page-07.jpg").
func pageNumberFromFile(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndexByte(base, '-')
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimLeft(base[idx+1:], "0"))
	if err != nil {
		return 0, false
	}
	return n, true
}
