package metrics

import (
	"strconv"
	"sync"
	"voyage/config"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
)

// Metrics holds the lifecycle counters exported on /metrics.
type Metrics struct {
	AppointmentTransitions *prometheus.CounterVec
	SlotConflicts          prometheus.Counter
	Conversions            *prometheus.CounterVec
	BookingsCreated        *prometheus.CounterVec
	ApprovalDecisions      *prometheus.CounterVec
	BudgetRejections       prometheus.Counter
	Payments               *prometheus.CounterVec
	PaymentAmount          *prometheus.CounterVec
	HTTPDuration           *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// NewDefault registers the metrics with the process-wide registry once and
// hands the same set to every later caller.
func NewDefault(cfg *config.Config) *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	})

	return defaultMetrics
}

func New(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		AppointmentTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appointment_transitions_total",
				Help:      "Appointment status changes by resulting status.",
			},
			[]string{"status"},
		),
		SlotConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slot_conflicts_total",
				Help:      "Reservations rejected because the slot was already claimed.",
			},
		),
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appointment_conversions_total",
				Help:      "Appointment to booking conversions by outcome.",
			},
			[]string{"outcome"},
		),
		BookingsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_created_total",
				Help:      "Bookings created by kind and initial status.",
			},
			[]string{"kind", "status"},
		),
		ApprovalDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approval_decisions_total",
				Help:      "Corporate approval outcomes.",
			},
			[]string{"decision"},
		),
		BudgetRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_rejections_total",
				Help:      "Corporate bookings rejected for exceeding the department budget.",
			},
		),
		Payments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Ledger entries by type and resulting payment status.",
			},
			[]string{"type", "payment_status"},
		),
		PaymentAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_amount_total",
				Help:      "Money recorded in the ledger by currency.",
			},
			[]string{"currency"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route pattern and status code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}

	registerer.MustRegister(
		m.AppointmentTransitions,
		m.SlotConflicts,
		m.Conversions,
		m.BookingsCreated,
		m.ApprovalDecisions,
		m.BudgetRejections,
		m.Payments,
		m.PaymentAmount,
		m.HTTPDuration,
	)

	return m
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func (m *Metrics) IncAppointmentTransition(status string) {
	m.AppointmentTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSlotConflict() {
	m.SlotConflicts.Inc()
}

func (m *Metrics) IncConversion(outcome string) {
	m.Conversions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncBookingCreated(kind, status string) {
	m.BookingsCreated.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) IncApprovalDecision(decision string) {
	m.ApprovalDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncBudgetRejection() {
	m.BudgetRejections.Inc()
}

func (m *Metrics) ObservePayment(entryType, paymentStatus, currency string, amount float64) {
	m.Payments.WithLabelValues(entryType, paymentStatus).Inc()
	m.PaymentAmount.WithLabelValues(currency).Add(amount)
}

func (m *Metrics) ObserveHTTP(method, route string, code int, seconds float64) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(seconds)
}
