package registration

import (
	"errors"
	"fmt"
)

// ErrNoIdentifier means no EPIC number could be extracted from the document
// by any strategy, including OCR.
var ErrNoIdentifier = errors.New("no EPIC number found in document")

// ErrInvalidPaymentStatus means the payment callback carried a status other
// than the two the workflow understands.
var ErrInvalidPaymentStatus = errors.New("invalid payment status")

// MismatchError means an EPIC number was extracted but it differs from the
// one the applicant entered. Extracted is the candidate from the document.
type MismatchError struct {
	Entered   string
	Extracted string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("EPIC number mismatch: entered %s, document contains %s", e.Entered, e.Extracted)
}
