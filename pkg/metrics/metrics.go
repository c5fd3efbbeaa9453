package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 物化触发来源
const (
	TriggerHTTP     = "http"
	TriggerMonth    = "month"
	TriggerCalendar = "calendar"
	TriggerCron     = "cron"
)

// Metrics 物化与通知相关的 Prometheus 指标
// 所有方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	materializeRuns     *prometheus.CounterVec
	sessionsCreated     *prometheus.CounterVec
	materializeDuration prometheus.Histogram
	notificationsSent   *prometheus.CounterVec
}

// New 创建独立 Registry 并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		materializeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club",
			Name:      "materialize_runs_total",
			Help:      "Materialization runs by trigger and result.",
		}, []string{"trigger", "result"}),
		sessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club",
			Name:      "materialized_sessions_total",
			Help:      "Training sessions inserted by materialization.",
		}, []string{"trigger"}),
		materializeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "club",
			Name:      "materialize_duration_seconds",
			Help:      "Duration of a materialization run.",
			Buckets:   prometheus.DefBuckets,
		}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club",
			Name:      "notifications_total",
			Help:      "Parent notifications by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.materializeRuns, m.sessionsCreated, m.materializeDuration, m.notificationsSent)
	return m
}

// ObserveMaterialize 记录一次物化
func (m *Metrics) ObserveMaterialize(trigger string, created int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.materializeRuns.WithLabelValues(trigger, result).Inc()
	m.sessionsCreated.WithLabelValues(trigger).Add(float64(created))
	m.materializeDuration.Observe(elapsed.Seconds())
}

// ObserveNotification 记录一条通知发送结果（sent / failed / skipped）
func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(result).Inc()
}

// Registry 暴露底层 Registry（测试读取指标用）
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
