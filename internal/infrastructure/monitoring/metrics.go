package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	PaymentsTotal     *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	AccrualItemsTotal *prometheus.CounterVec
	AccrualRunsTotal  prometheus.Counter
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_engine_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_payments_total",
				Help: "Payment attempts by outcome.",
			},
			[]string{"status"},
		),
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_loan_transitions_total",
				Help: "Loan lifecycle transitions by target status.",
			},
			[]string{"status"},
		),
		AccrualItemsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_accrual_items_total",
				Help: "Installments handled by the overdue accrual job, by outcome.",
			},
			[]string{"outcome"},
		),
		AccrualRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lending_engine_accrual_runs_total",
				Help: "Completed overdue accrual job runs.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordTransition(status string) {
	Business.TransitionsTotal.WithLabelValues(status).Inc()
}

func RecordAccrualItem(outcome string) {
	Business.AccrualItemsTotal.WithLabelValues(outcome).Inc()
}

func RecordAccrualRun() {
	Business.AccrualRunsTotal.Inc()
}
