package metrics

import (
	"fmt"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "simplesite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	reg             *prom.Registry
	buildDuration   prom.Histogram
	localeDuration  *prom.HistogramVec
	buildOutcome    *prom.CounterVec
	pagesRendered   *prom.CounterVec
	assets          *prom.CounterVec
	autolinkQueries *prom.CounterVec
	renderCycles    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.localeDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "locale_duration_seconds",
			Help:      "Duration of a single locale's asset and render pass",
			Buckets:   prom.DefBuckets,
		}, []string{"locale"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages written per locale",
		}, []string{"locale"})
		pr.assets = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assets_replicated_total",
			Help:      "Assets replicated per locale and mode",
		}, []string{"locale", "mode"})
		pr.autolinkQueries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "autolink_queries_total",
			Help:      "Autolink directory queries issued by templates",
		}, []string{"locale"})
		pr.renderCycles = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_cycles_total",
			Help:      "Autolink cycles detected while rendering",
		}, []string{"locale"})
		reg.MustRegister(pr.buildDuration, pr.localeDuration, pr.buildOutcome, pr.pagesRendered, pr.assets, pr.autolinkQueries, pr.renderCycles)
	})
	return pr
}

// Registry returns the registry the recorder's collectors live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLocaleDuration(locale string, d time.Duration) {
	if p == nil || p.localeDuration == nil {
		return
	}
	p.localeDuration.WithLabelValues(locale).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPagesRendered(locale string) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.WithLabelValues(locale).Inc()
}

func (p *PrometheusRecorder) AddAssets(locale, mode string, n int) {
	if p == nil || p.assets == nil {
		return
	}
	p.assets.WithLabelValues(locale, mode).Add(float64(n))
}

func (p *PrometheusRecorder) IncAutolinkQueries(locale string) {
	if p == nil || p.autolinkQueries == nil {
		return
	}
	p.autolinkQueries.WithLabelValues(locale).Inc()
}

func (p *PrometheusRecorder) IncRenderCycles(locale string) {
	if p == nil || p.renderCycles == nil {
		return
	}
	p.renderCycles.WithLabelValues(locale).Inc()
}
