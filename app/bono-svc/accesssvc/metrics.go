package accesssvc

import (
	"context"
	"errors"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/business/holiday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access service. A nil *Metrics records nothing.
type Metrics struct {
	// Decision outcomes by result and deciding rule
	DecisionOutcome *prometheus.CounterVec

	// Holiday lookup latency by lookup source
	LookupLatency *prometheus.HistogramVec

	// Failed holiday lookups by error kind
	LookupErrors *prometheus.CounterVec
}

// NewMetrics creates Metrics registered with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bono_access_decisions_total",
			Help: "Total eligibility decisions by outcome and deciding rule",
		}, []string{"outcome", "reason"}),

		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bono_access_holiday_lookup_duration_seconds",
			Help:    "Duration of holiday lookups by source",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}), // source: "calendar", "remote"

		LookupErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bono_access_holiday_lookup_errors_total",
			Help: "Total failed holiday lookups by error kind",
		}, []string{"kind"}), // kind: "configuration", "transport", "other"
	}
}

// IncrementOutcome records a decision outcome
func (m *Metrics) IncrementOutcome(permitted bool, reason string) {
	if m != nil {
		outcome := "denied"
		if permitted {
			outcome = "permitted"
		}
		m.DecisionOutcome.WithLabelValues(outcome, reason).Inc()
	}
}

// ObserveLookupLatency records the duration of a holiday lookup
func (m *Metrics) ObserveLookupLatency(source string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementLookupError records a failed holiday lookup
func (m *Metrics) IncrementLookupError(err error) {
	if m != nil {
		m.LookupErrors.WithLabelValues(errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	var configErr *access.ConfigurationError
	var transportErr *access.TransportError
	switch {
	case errors.As(err, &configErr):
		return "configuration"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "other"
	}
}

// meteredLookup records latency and failures of the wrapped holiday.Lookup
type meteredLookup struct {
	lookup  holiday.Lookup
	source  string
	metrics *Metrics
}

func (m *meteredLookup) IsHoliday(ctx context.Context, date access.CalendarDate) (bool, error) {
	start := time.Now()
	isHoliday, err := m.lookup.IsHoliday(ctx, date)
	m.metrics.ObserveLookupLatency(m.source, time.Since(start))
	if err != nil {
		m.metrics.IncrementLookupError(err)
	}
	return isHoliday, err
}
