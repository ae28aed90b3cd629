// Package metrics собирает Prometheus-метрики HTTP API и живой ленты.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "community_alerts"

// Metrics - набор метрик сервиса на собственном реестре
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Живая лента
	liveObservers        prometheus.Gauge
	liveObserversRemoved *prometheus.CounterVec
	eventsPublished      *prometheus.CounterVec
	eventsDelivered      *prometheus.CounterVec

	// Ограничение частоты
	rateLimitAllowed *prometheus.CounterVec
	rateLimitDenied  *prometheus.CounterVec
}

// New создает метрики и регистрирует их вместе со стандартными go/process коллекторами
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		liveObservers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_observers",
			Help:      "Number of registered live feed observers",
		}),
		liveObserversRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_observers_removed_total",
				Help:      "Live feed observers removed from the hub by reason",
			},
			[]string{"reason"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_events_published_total",
				Help:      "Alert events published to the hub",
			},
			[]string{"event_type"},
		),
		eventsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_events_delivered_total",
				Help:      "Alert events enqueued to observers",
			},
			[]string{"event_type"},
		),

		rateLimitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_allow_total",
				Help:      "Allowed requests by rate limiter",
			},
			[]string{"route"},
		),
		rateLimitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_deny_total",
				Help:      "Denied requests by rate limiter",
			},
			[]string{"route"},
		),
	}
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserverRegistered реализует broadcast.Recorder
func (m *Metrics) ObserverRegistered() {
	m.liveObservers.Inc()
}

// ObserverRemoved реализует broadcast.Recorder
func (m *Metrics) ObserverRemoved(reason string) {
	m.liveObservers.Dec()
	m.liveObserversRemoved.WithLabelValues(reason).Inc()
}

// EventPublished реализует broadcast.Recorder
func (m *Metrics) EventPublished(eventType string, delivered int) {
	m.eventsPublished.WithLabelValues(eventType).Inc()
	m.eventsDelivered.WithLabelValues(eventType).Add(float64(delivered))
}

// OnAllow учитывает пропущенный ограничителем запрос
func (m *Metrics) OnAllow(route string) {
	m.rateLimitAllowed.WithLabelValues(route).Inc()
}

// OnDeny учитывает отклоненный ограничителем запрос
func (m *Metrics) OnDeny(route string) {
	m.rateLimitDenied.WithLabelValues(route).Inc()
}

// Middleware записывает число и длительность HTTP-запросов.
// Путь берется из шаблона маршрута, чтобы не плодить метки по id.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
