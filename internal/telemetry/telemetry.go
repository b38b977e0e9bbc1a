// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing for
// the review classifier.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "review-classifier"

// Metrics holds the classifier Prometheus metrics.
type Metrics struct {
	Verdicts        *prometheus.CounterVec
	PrefilterRules  *prometheus.CounterVec
	RemoteFailures  *prometheus.CounterVec
	RemoteDuration  prometheus.Histogram
	EventsPublished *prometheus.CounterVec
}

// Provider wraps the tracer and a private metrics registry.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers metrics on a fresh registry, so several providers can
// coexist in one process (tests).
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Registry returns the registry backing Handler.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the /metrics handler.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "review_classifier_verdicts_total",
			Help: "Verdicts returned, by label and by the stage that produced them",
		}, []string{"label", "source"}),

		PrefilterRules: f.NewCounterVec(prometheus.CounterOpts{
			Name: "review_classifier_prefilter_rule_total",
			Help: "Pre-filter evaluations by the rule that decided",
		}, []string{"rule"}),

		RemoteFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "review_classifier_remote_failures_total",
			Help: "Remote classifier calls that fell back, by failure kind",
		}, []string{"kind"}),

		RemoteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_classifier_remote_duration_seconds",
			Help:    "Latency of remote classifier calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4, 5, 7.5},
		}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "review_classifier_events_published_total",
			Help: "Moderation events published, by result",
		}, []string{"result"}),
	}
}

// RecordVerdict counts one returned verdict.
func (p *Provider) RecordVerdict(_ context.Context, label, source string) {
	p.Metrics.Verdicts.WithLabelValues(label, source).Inc()
}

// RecordPrefilterRule counts the rule that decided a pre-filter evaluation.
func (p *Provider) RecordPrefilterRule(_ context.Context, rule string) {
	p.Metrics.PrefilterRules.WithLabelValues(rule).Inc()
}

// RecordRemoteCall observes call latency and, when kind is non-empty, counts a failure.
func (p *Provider) RecordRemoteCall(_ context.Context, duration time.Duration, kind string) {
	p.Metrics.RemoteDuration.Observe(duration.Seconds())
	if kind != "" {
		p.Metrics.RemoteFailures.WithLabelValues(kind).Inc()
	}
}

// RecordEventPublish counts a moderation event publish attempt.
func (p *Provider) RecordEventPublish(_ context.Context, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	p.Metrics.EventsPublished.WithLabelValues(result).Inc()
}

// StartSpan starts a span. The caller ends it.
//
//nolint:spancheck // caller ends the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
