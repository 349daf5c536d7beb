package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus observability primitives for the ticketing
// pipeline.
type Metrics struct {
	apiRequests       *prometheus.CounterVec
	apiDuration       *prometheus.HistogramVec
	webhooksReceived  *prometheus.CounterVec
	ticketsCreated    prometheus.Counter
	ticketsDuplicated prometheus.Counter
	ticketEmails      *prometheus.CounterVec
	checkins          *prometheus.CounterVec
	rateLimited       prometheus.Counter
	formListingSynced prometheus.Gauge
}

// NewMetrics registers and returns Prometheus metrics.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatekeeper_api_duration_seconds",
		Help:    "API request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	webhooksReceived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_webhooks_received_total",
		Help: "Webhook deliveries by outcome.",
	}, []string{"outcome"})

	ticketsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_tickets_created_total",
		Help: "Tickets created from fresh submissions.",
	})

	ticketsDuplicated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_tickets_deduplicated_total",
		Help: "Submissions resolved to an existing ticket by invoice number.",
	})

	ticketEmails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_ticket_emails_total",
		Help: "Ticket confirmation email outcomes.",
	}, []string{"status"})

	checkins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_checkins_total",
		Help: "Check-in attempts by result.",
	}, []string{"result"})

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_webhooks_rate_limited_total",
		Help: "Webhook deliveries rejected by the rate limiter.",
	})

	formListingSynced := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gatekeeper_forms_synced",
		Help: "Enabled forms seen on the last listing sync.",
	})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		webhooksReceived,
		ticketsCreated,
		ticketsDuplicated,
		ticketEmails,
		checkins,
		rateLimited,
		formListingSynced,
	)

	return &Metrics{
		apiRequests:       apiRequests,
		apiDuration:       apiDuration,
		webhooksReceived:  webhooksReceived,
		ticketsCreated:    ticketsCreated,
		ticketsDuplicated: ticketsDuplicated,
		ticketEmails:      ticketEmails,
		checkins:          checkins,
		rateLimited:       rateLimited,
		formListingSynced: formListingSynced,
	}
}

// ObserveAPIRequest records an API request and latency.
func (m *Metrics) ObserveAPIRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(sanitizeLabel(method), sanitizeLabel(route), status).Inc()
	m.apiDuration.WithLabelValues(sanitizeLabel(method), sanitizeLabel(route)).Observe(duration.Seconds())
}

// ObserveWebhook records one webhook delivery outcome.
func (m *Metrics) ObserveWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhooksReceived.WithLabelValues(sanitizeLabel(outcome)).Inc()
}

// ObserveTicketCreated increments the fresh ticket counter.
func (m *Metrics) ObserveTicketCreated() {
	if m == nil {
		return
	}
	m.ticketsCreated.Inc()
}

// ObserveTicketDeduplicated increments the replayed submission counter.
func (m *Metrics) ObserveTicketDeduplicated() {
	if m == nil {
		return
	}
	m.ticketsDuplicated.Inc()
}

// ObserveTicketEmail records a confirmation email outcome.
func (m *Metrics) ObserveTicketEmail(status string) {
	if m == nil {
		return
	}
	m.ticketEmails.WithLabelValues(sanitizeLabel(status)).Inc()
}

// ObserveCheckIn records a check-in attempt by result.
func (m *Metrics) ObserveCheckIn(result string) {
	if m == nil {
		return
	}
	m.checkins.WithLabelValues(sanitizeLabel(result)).Inc()
}

// ObserveRateLimited increments the rejected webhook counter.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// SetFormsSynced updates the last listing sync gauge.
func (m *Metrics) SetFormsSynced(value float64) {
	if m == nil {
		return
	}
	m.formListingSynced.Set(value)
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
