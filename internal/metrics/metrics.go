package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the evaluation counters exported to Prometheus.
type Metrics struct {
	Registry    *prometheus.Registry
	Evaluations *prometheus.CounterVec
	RunDuration prometheus.Histogram
	LastRun     prometheus.Gauge
}

// New registers the evaluation metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipes",
			Name:      "evaluations_total",
			Help:      "Recipe evaluations by recipe and outcome kind.",
		}, []string{"recipe", "kind"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recipes",
			Name:      "run_duration_seconds",
			Help:      "Wall time of an evaluation run.",
			Buckets:   prometheus.DefBuckets,
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "recipes",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last evaluation run finished.",
		}),
	}
	reg.MustRegister(m.Evaluations, m.RunDuration, m.LastRun)
	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(started, finished time.Time) {
	m.RunDuration.Observe(finished.Sub(started).Seconds())
	m.LastRun.Set(float64(finished.Unix()))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve runs the /metrics endpoint on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
