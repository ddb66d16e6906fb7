package extract

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DirectConfig configures embedded-text extraction.
type DirectConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

// DirectExtractor reads the embedded text layers of a PDF without
// rasterization. Every page is collected in three granularities — linear
// text, position-sorted word tokens, and layout-preserving blocks — and the
// outputs are concatenated. The duplication is intentional: the matcher only
// needs one hit, so more views of the same page raise recall.
type DirectExtractor struct {
	cfg    DirectConfig
	runner Runner
	logger *slog.Logger
}

func NewDirectExtractor(cfg DirectConfig, logger *slog.Logger) *DirectExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &DirectExtractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *DirectExtractor) Extract(ctx context.Context, path string) (Result, error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}
	linear := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(linear, "\f")
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}

	parts := []string{linear}
	var warns []string
	for p := 1; p <= pages; p++ {
		words, err := e.pageWords(ctx, path, p)
		if err != nil {
			e.logger.Warn("word extraction failed; skipping page", "path", path, "page", p, "error", err)
			warns = append(warns, err.Error())
		} else if words != "" {
			parts = append(parts, words)
		}

		blocks, err := e.pageLayout(ctx, path, p)
		if err != nil {
			e.logger.Warn("layout extraction failed; skipping page", "path", path, "page", p, "error", err)
			warns = append(warns, err.Error())
		} else if blocks != "" {
			parts = append(parts, blocks)
		}
	}

	return Result{
		Text:     strings.Join(parts, "\n"),
		Pages:    pages,
		Method:   "pdf-text",
		Warnings: warns,
	}, nil
}

var reBBoxWord = regexp.MustCompile(`<word xMin="([0-9.]+)" yMin="([0-9.]+)"[^>]*>([^<]*)</word>`)

type positionedWord struct {
	x, y float64
	text string
}

// pageWords returns the page's word tokens in approximate reading order
// (top-to-bottom, then left-to-right), joined by single spaces.
func (e *DirectExtractor) pageWords(ctx context.Context, path string, page int) (string, error) {
	p := strconv.Itoa(page)
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-bbox", "-f", p, "-l", p, path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext -bbox page %d: %w: %s", page, err, truncate(string(errb), 256))
	}

	var words []positionedWord
	for _, m := range reBBoxWord.FindAllStringSubmatch(string(out), -1) {
		x, _ := strconv.ParseFloat(m[1], 64)
		y, _ := strconv.ParseFloat(m[2], 64)
		words = append(words, positionedWord{x: x, y: y, text: html.UnescapeString(m[3])})
	}
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].y != words[j].y {
			return words[i].y < words[j].y
		}
		return words[i].x < words[j].x
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if w.text != "" {
			tokens = append(tokens, w.text)
		}
	}
	return strings.Join(tokens, " "), nil
}

// pageLayout returns the page's text with physical layout preserved, which
// keeps block-level groupings that the linear pass flattens.
func (e *DirectExtractor) pageLayout(ctx context.Context, path string, page int) (string, error) {
	p := strconv.Itoa(page)
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", "-f", p, "-l", p, path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext -layout page %d: %w: %s", page, err, truncate(string(errb), 256))
	}
	return string(out), nil
}
