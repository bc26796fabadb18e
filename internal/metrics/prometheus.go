package metrics

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScoreBuckets spans the similarity range with the label boundaries as edges.
var ScoreBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// PrometheusRecorder reports evaluation metrics using Prometheus primitives.
type PrometheusRecorder struct {
	evaluations *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	durations   *prometheus.HistogramVec
	gates       *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trajeval_evaluations_total",
			Help: "Total number of trajectory comparisons by label",
		}, []string{"scenario", "label"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trajeval_final_score",
			Help:    "Final failure-aware score per comparison",
			Buckets: ScoreBuckets,
		}, []string{"scenario"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trajeval_evaluation_duration_seconds",
			Help:    "Comparison latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"scenario"}),
		gates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trajeval_gate_decisions_total",
			Help: "Total gate decisions by action and veto",
		}, []string{"scenario", "action", "vetoed"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trajeval_evaluation_errors_total",
			Help: "Comparisons that could not be evaluated",
		}, []string{"scenario"}),
	}

	for _, collector := range []prometheus.Collector{r.evaluations, r.scores, r.durations, r.gates, r.errors} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveEvaluation(scenario, label string, finalScore float64, duration time.Duration) {
	r.evaluations.WithLabelValues(scenario, label).Inc()
	r.scores.WithLabelValues(scenario).Observe(finalScore)
	r.durations.WithLabelValues(scenario).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveGate(scenario, action string, vetoed bool) {
	r.gates.WithLabelValues(scenario, action, strconv.FormatBool(vetoed)).Inc()
}

func (r *PrometheusRecorder) ObserveError(scenario string) {
	r.errors.WithLabelValues(scenario).Inc()
}

// StartPrometheusServer serves registry on addr in the background. The
// returned server's Addr holds the bound address.
func StartPrometheusServer(addr string, registry *prometheus.Registry) (*http.Server, error) {
	if addr == "" {
		addr = ":2112"
	}
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %q: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, nil
}
