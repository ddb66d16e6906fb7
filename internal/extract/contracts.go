package extract

import (
	"context"
)

// TextExtractor is one extraction strategy: document path -> text blob.
// Implementations must not fail for data-quality problems on individual
// pages; only a document that cannot be processed at all is an error.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Warnings []string
}
