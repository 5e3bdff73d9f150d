package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farrier_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farrier_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farrier_invoices_created_total",
		Help: "Invoices successfully created in the accounting provider",
	})

	InvoiceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farrier_invoice_failures_total",
		Help: "Invoice creation attempts rejected by the accounting provider",
	})

	ApprovalActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farrier_approval_actions_total",
		Help: "Approval workflow actions by outcome",
	}, []string{"action"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farrier_accounting_token_refreshes_total",
		Help: "Accounting token refresh attempts by result",
	}, []string{"result"})
)
