package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCRConfig configures the rasterize-and-recognize fallback.
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // default "eng"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit
}

// OCRExtractor rasterizes every page and runs optical character recognition.
// Invoked only when direct text extraction yields no identifier. A missing
// tesseract binary is a degraded-but-normal outcome: empty text, no error.
type OCRExtractor struct {
	cfg    OCRConfig
	runner Runner
	logger *slog.Logger
	look   func(file string) (string, error)
}

func NewOCRExtractor(cfg OCRConfig, logger *slog.Logger) *OCRExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &OCRExtractor{cfg: cfg, runner: execRunner{}, logger: logger, look: exec.LookPath}
}

func (e *OCRExtractor) Extract(ctx context.Context, path string) (Result, error) {
	if _, err := e.look(e.cfg.Tesseract); err != nil {
		e.logger.Warn("tesseract not found on host; skipping ocr fallback", "binary", e.cfg.Tesseract)
		return Result{Method: "pdf-ocr", Warnings: []string{"tesseract unavailable"}}, nil
	}

	tmpDir, err := os.MkdirTemp("", "mw-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, err := e.recognize(ctx, img)
		if err != nil {
			e.logger.Warn("ocr failed; skipping page", "image", img, "error", err)
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}

	return Result{
		Text:     b.String(),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warns,
	}, nil
}

func (e *OCRExtractor) recognize(ctx context.Context, imgPath string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 256))
	}
	return string(out), nil
}
