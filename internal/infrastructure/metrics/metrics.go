// Package metrics expone las métricas Prometheus del motor de costo en destino.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/catalog"
)

var (
	_ landedcost.Recorder   = (*Recorder)(nil)
	_ catalog.StateObserver = (*Recorder)(nil)
)

// Recorder colectores del motor registrados en un Registerer.
type Recorder struct {
	calculations      *prometheus.CounterVec
	calculationTime   *prometheus.HistogramVec
	finalized         prometheus.Counter
	pricePushes       *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	breakerTransition *prometheus.CounterVec
}

// New crea y registra los colectores. reg nil usa prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "landed_cost_calculations_total",
			Help:      "Cálculos de costo en destino por método y resultado.",
		}, []string{"method", "result"}),
		calculationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "landed_cost_calculation_duration_seconds",
			Help:      "Duración de los cálculos de costo en destino.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"method"}),
		finalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_finalized_total",
			Help:      "Embarques finalizados.",
		}),
		pricePushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_price_updates_total",
			Help:      "Actualizaciones de precio enviadas al catálogo por resultado.",
		}, []string{"result"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Estado del circuit breaker: 0=closed,1=half-open,2=open.",
		}, []string{"target"}),
		breakerTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transition_total",
			Help:      "Transiciones de estado del circuit breaker.",
		}, []string{"target", "from", "to"}),
	}
	reg.MustRegister(r.calculations, r.calculationTime, r.finalized, r.pricePushes, r.breakerState, r.breakerTransition)
	return r
}

// ObserveCalculation cuenta el cálculo y registra su duración.
func (r *Recorder) ObserveCalculation(method string, elapsed time.Duration, err error) {
	if method == "" {
		method = "unknown"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.calculations.WithLabelValues(method, result).Inc()
	r.calculationTime.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ShipmentFinalized cuenta una finalización.
func (r *Recorder) ShipmentFinalized() {
	r.finalized.Inc()
}

// ObservePush suma los resultados de un envío al catálogo.
func (r *Recorder) ObservePush(updated, skipped, failed int) {
	r.pricePushes.WithLabelValues("updated").Add(float64(updated))
	r.pricePushes.WithLabelValues("skipped").Add(float64(skipped))
	r.pricePushes.WithLabelValues("failed").Add(float64(failed))
}

// BreakerStateChanged refleja el estado del breaker del catálogo.
func (r *Recorder) BreakerStateChanged(name string, from, to gobreaker.State) {
	r.breakerState.WithLabelValues(name).Set(float64(to))
	r.breakerTransition.WithLabelValues(name, from.String(), to.String()).Inc()
}

// BreakerGauge gauge de estado del breaker indicado.
func (r *Recorder) BreakerGauge(name string) prometheus.Gauge {
	return r.breakerState.WithLabelValues(name)
}
