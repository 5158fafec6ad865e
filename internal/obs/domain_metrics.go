package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutCalculationsTotal counts checkout calculations by outcome kind.
	CheckoutCalculationsTotal *prometheus.CounterVec
	// CheckoutCalculationLatency records calculation latency in milliseconds.
	CheckoutCalculationLatency prometheus.Histogram
	// FlatTaxLookupsTotal counts flat tax rule lookups by outcome.
	FlatTaxLookupsTotal *prometheus.CounterVec
	// InvariantViolationsTotal counts breakdowns rejected by the verifier.
	InvariantViolationsTotal prometheus.Counter
	// FinalTotalClampedTotal counts calculations whose final total was clamped at zero.
	FinalTotalClampedTotal prometheus.Counter
	// SnapshotWritesTotal counts breakdown snapshot writes by outcome.
	SnapshotWritesTotal *prometheus.CounterVec
	// BreakerState reports breaker state per target: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitionsTotal counts breaker state transitions.
	BreakerTransitionsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers checkout collectors once per process.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_calculations_total",
			Help:      "Count of checkout calculations by result.",
		}, []string{"result"})
		CheckoutCalculationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_calculation_duration_ms",
			Help:      "Latency of checkout calculations in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		})
		FlatTaxLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flat_tax_lookups_total",
			Help:      "Count of flat tax rule lookups by result.",
		}, []string{"result"})
		InvariantViolationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_invariant_violations_total",
			Help:      "Number of checkout breakdowns rejected by invariant verification.",
		})
		FinalTotalClampedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_final_total_clamped_total",
			Help:      "Number of checkout calculations whose final total was clamped at zero.",
		})
		SnapshotWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Count of order breakdown snapshot writes by result.",
		}, []string{"result"})

		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"target"})
		BreakerTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transitions_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"target", "from", "to"})

		mustRegisterCollector(reg, CheckoutCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutCalculationLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CheckoutCalculationLatency = v
			}
		})
		mustRegisterCollector(reg, FlatTaxLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FlatTaxLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, InvariantViolationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvariantViolationsTotal = v
			}
		})
		mustRegisterCollector(reg, FinalTotalClampedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				FinalTotalClampedTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotWritesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotWritesTotal = v
			}
		})
		mustRegisterCollector(reg, BreakerState, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.GaugeVec); ok {
				BreakerState = v
			}
		})
		mustRegisterCollector(reg, BreakerTransitionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BreakerTransitionsTotal = v
			}
		})
	})
}

// ObserveCalculation records the outcome and latency of one checkout calculation.
func ObserveCalculation(result string, took time.Duration) {
	if CheckoutCalculationsTotal != nil {
		CheckoutCalculationsTotal.WithLabelValues(result).Inc()
	}
	if CheckoutCalculationLatency != nil {
		CheckoutCalculationLatency.Observe(DurationMillis(took))
	}
}

// ObserveFlatTaxLookup records the outcome of one flat tax rule lookup.
func ObserveFlatTaxLookup(result string) {
	if FlatTaxLookupsTotal != nil {
		FlatTaxLookupsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveInvariantViolation counts a rejected breakdown.
func ObserveInvariantViolation() {
	if InvariantViolationsTotal != nil {
		InvariantViolationsTotal.Inc()
	}
}

// ObserveFinalTotalClamped counts a final total clamped at zero.
func ObserveFinalTotalClamped() {
	if FinalTotalClampedTotal != nil {
		FinalTotalClampedTotal.Inc()
	}
}

// ObserveSnapshotWrite records the outcome of a snapshot write.
func ObserveSnapshotWrite(result string) {
	if SnapshotWritesTotal != nil {
		SnapshotWritesTotal.WithLabelValues(result).Inc()
	}
}

// ObserveBreakerTransition records a breaker moving from one state to another.
func ObserveBreakerTransition(target, from, to string, state float64) {
	if BreakerState != nil {
		BreakerState.WithLabelValues(target).Set(state)
	}
	if BreakerTransitionsTotal != nil {
		BreakerTransitionsTotal.WithLabelValues(target, from, to).Inc()
	}
}
