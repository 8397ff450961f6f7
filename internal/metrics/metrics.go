// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_borrow_requests_created_total",
		Help: "Total number of borrow requests successfully created.",
	})

	RequestsApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_borrow_requests_approved_total",
		Help: "Total number of borrow requests approved.",
	})

	RequestsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_borrow_requests_rejected_total",
		Help: "Total number of borrow requests rejected.",
	})

	BooksReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_books_returned_total",
		Help: "Total number of books returned.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	ActiveLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "library_active_loans",
		Help: "Current number of loans not yet returned.",
	})
)
