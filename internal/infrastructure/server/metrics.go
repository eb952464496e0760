package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

// DeckSizer reports the number of cards in the live deck.
type DeckSizer interface {
	Len() int
}

// Metrics owns the service registry and collectors.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	gradesTotal      *prometheus.CounterVec
}

var _ usecase.GradeRecorder = (*Metrics)(nil)

func NewMetrics(deck DeckSizer) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Total number of RPC requests",
		}, []string{"procedure", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rpc_request_duration_seconds",
			Help:    "RPC request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"procedure"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rpc_requests_in_flight",
			Help: "Number of RPC requests currently being processed",
		}),
		gradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_grades_total",
			Help: "Total number of graded reviews by outcome and quality",
		}, []string{"outcome", "quality"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.gradesTotal,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "deck_items",
			Help: "Number of cards in the loaded deck",
		}, func() float64 { return float64(deck.Len()) }),
	)
	return m
}

// RecordGrade counts one grading outcome.
func (m *Metrics) RecordGrade(schedule entity.Schedule) {
	outcome := "pass"
	if schedule.Lapsed() {
		outcome = "lapse"
	}
	m.gradesTotal.WithLabelValues(outcome, qualityLabel(schedule.Quality)).Inc()
}

func qualityLabel(q int) string {
	return strconv.Itoa(entity.ClampQuality(q))
}

// Interceptor records request counts and latency per procedure.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.requestsTotal.WithLabelValues(procedure, code).Inc()
			m.requestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
