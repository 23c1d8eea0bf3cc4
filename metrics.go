package main

import (
	"errors"

	"bapp/pkg/bapp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bapp",
		Name:      "attachment_uploads_total",
		Help:      "Attachment uploads by file type and outcome.",
	}, []string{"file_type", "outcome"})

	deletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bapp",
		Name:      "attachment_deletes_total",
		Help:      "Attachment deletions by outcome.",
	}, []string{"outcome"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bapp",
		Name:      "pdf_exports_total",
		Help:      "PDF exports by outcome.",
	}, []string{"outcome"})

	exportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bapp",
		Name:      "pdf_render_seconds",
		Help:      "Time spent rendering a BAPP into its temporary file.",
		Buckets:   prometheus.DefBuckets,
	})

	exportBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bapp",
		Name:      "pdf_streamed_bytes_total",
		Help:      "Bytes of PDF streamed to clients.",
	})
)

// outcome is the metric label for an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, bapp.ErrValidation):
		return "validation"
	case errors.Is(err, bapp.ErrNotFound):
		return "not_found"
	case errors.Is(err, bapp.ErrForbidden):
		return "forbidden"
	case errors.Is(err, bapp.ErrRender):
		return "render"
	case errors.Is(err, bapp.ErrStorage):
		return "storage"
	case errors.Is(err, bapp.ErrPersistence):
		return "persistence"
	}
	return "error"
}
