package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tnbsp/membership-workflow/internal/extract"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(context.Context, string) (extract.Result, error) {
	s.calls++
	if s.err != nil {
		return extract.Result{}, s.err
	}
	return extract.Result{Text: s.text}, nil
}

func TestVerifyDirectMatchSkipsOCR(t *testing.T) {
	direct := &stubExtractor{text: "EPIC No: ABC1234567"}
	ocr := &stubExtractor{text: "should never be read"}
	v := New(direct, ocr, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.True(t, res.Matched)
	assert.Equal(t, "ABC1234567", res.Extracted)
	assert.False(t, res.UsedOCR)
	assert.Equal(t, 1, direct.calls)
	assert.Equal(t, 0, ocr.calls, "ocr must not run when direct extraction finds a candidate")
}

func TestVerifyFallsBackToOCR(t *testing.T) {
	direct := &stubExtractor{text: "scanned image, no text layer"}
	ocr := &stubExtractor{text: "Identity Card ABC1234567"}
	v := New(direct, ocr, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.True(t, res.Matched)
	assert.True(t, res.UsedOCR)
	assert.Equal(t, 1, ocr.calls)
}

func TestVerifyExpectedIsCaseAndSpaceTolerant(t *testing.T) {
	direct := &stubExtractor{text: "ABC1234567"}
	v := New(direct, nil, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "  abc1234567 ")
	assert.True(t, res.Matched)
}

func TestVerifyMismatchKeepsExtracted(t *testing.T) {
	direct := &stubExtractor{text: "EPIC No: XYZ7654321"}
	v := New(direct, nil, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.False(t, res.Matched)
	assert.Equal(t, "XYZ7654321", res.Extracted,
		"a mismatch must carry the extracted candidate so callers can report it")
}

func TestVerifyNothingFoundAnywhere(t *testing.T) {
	direct := &stubExtractor{text: "no identifier here"}
	ocr := &stubExtractor{text: "still nothing"}
	v := New(direct, ocr, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.False(t, res.Matched)
	assert.Empty(t, res.Extracted)
	assert.True(t, res.UsedOCR)
}

func TestVerifyUnreadableDocumentIsNotFound(t *testing.T) {
	direct := &stubExtractor{err: errors.New("not a pdf")}
	ocr := &stubExtractor{err: errors.New("render failed")}
	v := New(direct, ocr, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.False(t, res.Matched)
	assert.Empty(t, res.Extracted, "extraction failures collapse to no-candidate")
}

func TestVerifyNilOCR(t *testing.T) {
	direct := &stubExtractor{text: "nothing"}
	v := New(direct, nil, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.False(t, res.Matched)
	assert.False(t, res.UsedOCR)
}

func TestVerifySpacedDigitsRecovered(t *testing.T) {
	direct := &stubExtractor{text: "EPIC No: ABC 1234 567"}
	v := New(direct, nil, nil)

	res := v.Verify(context.Background(), "/tmp/doc.pdf", "ABC1234567")
	assert.True(t, res.Matched)
}
