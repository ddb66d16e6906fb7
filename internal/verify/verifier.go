// Package verify decides whether an uploaded identity document contains an
// expected EPIC number.
package verify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tnbsp/membership-workflow/internal/epic"
	"github.com/tnbsp/membership-workflow/internal/extract"
)

// Result is the verification outcome. Extracted is empty when no candidate
// was found by any strategy, which lets callers distinguish "no identifier"
// from "identifier found but mismatched". UsedOCR reports whether the OCR
// fallback ran.
type Result struct {
	Matched   bool
	Extracted string
	UsedOCR   bool
}

// Verifier composes the direct extractor and the OCR fallback into a single
// decision. It has no side effects: persisting or deleting files and session
// state is the caller's job.
type Verifier struct {
	direct extract.TextExtractor
	ocr    extract.TextExtractor
	logger *slog.Logger
}

func New(direct, ocr extract.TextExtractor, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{direct: direct, ocr: ocr, logger: logger}
}

// Verify runs direct extraction, then OCR only if the direct pass produced no
// candidate. A document that cannot be opened at all is reported as "no
// candidate found" — the cause is logged, not surfaced.
func (v *Verifier) Verify(ctx context.Context, path, expected string) Result {
	expected = strings.ToUpper(strings.TrimSpace(expected))

	candidate, usedOCR := v.extractCandidate(ctx, path)
	return Result{
		Matched:   candidate != "" && candidate == expected,
		Extracted: candidate,
		UsedOCR:   usedOCR,
	}
}

func (v *Verifier) extractCandidate(ctx context.Context, path string) (string, bool) {
	res, err := v.direct.Extract(ctx, path)
	if err != nil {
		v.logger.Warn("direct text extraction failed", "path", path, "error", err)
	} else {
		if found := epic.FindInText(res.Text); found != "" {
			v.logger.Debug("epic found in embedded text", "path", path, "pages", res.Pages)
			return found, false
		}
	}

	if v.ocr == nil {
		return "", false
	}
	ocrRes, err := v.ocr.Extract(ctx, path)
	if err != nil {
		v.logger.Warn("ocr fallback failed", "path", path, "error", err)
		return "", true
	}
	found := epic.FindInText(ocrRes.Text)
	if found == "" {
		v.logger.Debug("ocr completed but no epic found", "path", path, "pages", ocrRes.Pages)
	}
	return found, true
}
