package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge
	DBWaitDurationTotal prometheus.Gauge

	// Планирование записей
	SchedulingDecisions         *prometheus.CounterVec
	SchedulingRetries           *prometheus.CounterVec
	SchedulingTransientFailures prometheus.Counter
	CapacityCacheLookups        *prometheus.CounterVec
}

// New создает и регистрирует метрики в reg
// В production передаётся prometheus.DefaultRegisterer, в тестах - prometheus.NewRegistry()
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests",
			ConstLabels: constLabels,
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Duration of database queries",
			ConstLabels: constLabels,
			Buckets:     []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 3},
		}, []string{"operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections to the database",
			ConstLabels: constLabels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
		DBWaitDurationTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds_total",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: constLabels,
		}),

		SchedulingDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduling_decisions_total",
			Help:        "Admission decisions by scope kind and outcome",
			ConstLabels: constLabels,
		}, []string{"scope_kind", "outcome"}),
		SchedulingRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduling_commit_retries_total",
			Help:        "Commit attempts aborted and retried",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		SchedulingTransientFailures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "scheduling_transient_failures_total",
			Help:        "Bookings surfaced as transient failures after exhausting retries",
			ConstLabels: constLabels,
		}),
		CapacityCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "capacity_cache_lookups_total",
			Help:        "Capacity resolver cache lookups",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery записывает длительность запроса к БД
func (m *Metrics) ObserveQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObservePool обновляет метрики пула соединений
func (m *Metrics) ObservePool(open, inUse, idle int, waitCount int64, waitDuration time.Duration) {
	m.DBOpenConnections.Set(float64(open))
	m.DBInUseConnections.Set(float64(inUse))
	m.DBIdleConnections.Set(float64(idle))
	m.DBWaitCount.Set(float64(waitCount))
	m.DBWaitDurationTotal.Set(waitDuration.Seconds())
}

// ObserveDecision учитывает решение о допуске записи
func (m *Metrics) ObserveDecision(scopeKind, outcome string) {
	m.SchedulingDecisions.WithLabelValues(scopeKind, outcome).Inc()
}

// ObserveRetry учитывает повтор попытки коммита
func (m *Metrics) ObserveRetry(reason string) {
	m.SchedulingRetries.WithLabelValues(reason).Inc()
}

// ObserveTransientFailure учитывает исчерпание повторов
func (m *Metrics) ObserveTransientFailure() {
	m.SchedulingTransientFailures.Inc()
}

// ObserveCapacityCache учитывает попадание/промах кэша лимитов
func (m *Metrics) ObserveCapacityCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CapacityCacheLookups.WithLabelValues(result).Inc()
}
