package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mini_tweeter"

// Metrics 持有独立的 registry，测试中可重复创建
type Metrics struct {
	Registry *prometheus.Registry

	HTTPInFlight    prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Interactions    *prometheus.CounterVec
	TweetsCreated   prometheus.Counter
	QuotaRejections prometheus.Counter
	JobRuns         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		Interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interactions",
			Name:      "total",
			Help:      "Successful like/unlike/retweet/unretweet operations.",
		}, []string{"action", "target_type"}),
		TweetsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tweets",
			Name:      "created_total",
			Help:      "Tweets accepted after the quota check.",
		}),
		QuotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quota",
			Name:      "rejections_total",
			Help:      "Tweets rejected because the daily quota was exhausted.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Maintenance job runs by job and outcome.",
		}, []string{"job", "success"}),
	}

	m.Registry.MustRegister(
		m.HTTPInFlight,
		m.HTTPRequests,
		m.HTTPDuration,
		m.Interactions,
		m.TweetsCreated,
		m.QuotaRejections,
		m.JobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveInteraction 记录一次成功的互动；m 为 nil 时忽略
func (m *Metrics) ObserveInteraction(action, targetType string) {
	if m == nil {
		return
	}
	m.Interactions.WithLabelValues(action, targetType).Inc()
}

func (m *Metrics) ObserveTweetCreated() {
	if m == nil {
		return
	}
	m.TweetsCreated.Inc()
}

func (m *Metrics) ObserveQuotaRejection() {
	if m == nil {
		return
	}
	m.QuotaRejections.Inc()
}

func (m *Metrics) ObserveJobRun(job string, success bool) {
	if m == nil {
		return
	}
	label := "true"
	if !success {
		label = "false"
	}
	m.JobRuns.WithLabelValues(job, label).Inc()
}
