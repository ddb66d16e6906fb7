// Package metrics exposes Prometheus counters for the registration workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verifications counts document verification attempts by outcome:
	// "matched", "mismatched", "not_found", "error".
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "verify",
		Name:      "documents_total",
		Help:      "Document verification attempts by outcome.",
	}, []string{"outcome"})

	// OCRFallbacks counts verifications that had to fall back to OCR because
	// the direct text pass produced no candidate.
	OCRFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "verify",
		Name:      "ocr_fallbacks_total",
		Help:      "Verifications that required the OCR fallback.",
	})

	// MembersCreated counts members created pending payment.
	MembersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "members",
		Name:      "created_total",
		Help:      "Members created pending payment.",
	})

	// MembersActivated counts members activated by a successful payment.
	MembersActivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "members",
		Name:      "activated_total",
		Help:      "Members activated after payment.",
	})

	// MembersDeleted counts members removed after a failed payment.
	MembersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "members",
		Name:      "deleted_total",
		Help:      "Members deleted after a failed payment.",
	})

	// CardsGenerated counts membership cards rendered.
	CardsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "membership",
		Subsystem: "cards",
		Name:      "generated_total",
		Help:      "Membership cards generated.",
	})
)
