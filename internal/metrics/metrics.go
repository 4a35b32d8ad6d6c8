package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/playerledger/internal/model"
)

const namespace = "playerledger"

// Metrics holds the collectors for one server instance, registered on its
// own registry so that tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	OperationsTotal      *prometheus.CounterVec
	RejectedTotal        *prometheus.CounterVec
	AccountsCreatedTotal prometheus.Counter
	ActionsTotal         *prometheus.CounterVec
	AuditFailuresTotal   prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of applied account operations",
			},
			[]string{"type"},
		),
		RejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_rejected_total",
				Help:      "Total number of account operations rejected, by error kind",
			},
			[]string{"type", "kind"},
		),
		AccountsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_created_total",
				Help:      "Total number of accounts created",
			},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of audited actions",
			},
			[]string{"type", "status"},
		),
		AuditFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_write_failures_total",
				Help:      "Total number of action audit entries that could not be written",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OperationsTotal,
		m.RejectedTotal,
		m.AccountsCreatedTotal,
		m.ActionsTotal,
		m.AuditFailuresTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest counts one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOperation counts an applied credit or debit
func (m *Metrics) RecordOperation(opType model.OperationType) {
	m.OperationsTotal.WithLabelValues(string(opType)).Inc()
}

// RecordRejected counts a credit or debit that failed
func (m *Metrics) RecordRejected(opType model.OperationType, err error) {
	m.RejectedTotal.WithLabelValues(string(opType), model.KindOf(err).String()).Inc()
}

// RecordAccountCreated counts a new account
func (m *Metrics) RecordAccountCreated() {
	m.AccountsCreatedTotal.Inc()
}

// RecordAction counts an audited action
func (m *Metrics) RecordAction(actionType model.ActionType, status model.ActionStatus) {
	m.ActionsTotal.WithLabelValues(string(actionType), string(status)).Inc()
}

// RecordAuditFailure counts a lost audit entry
func (m *Metrics) RecordAuditFailure() {
	m.AuditFailuresTotal.Inc()
}
