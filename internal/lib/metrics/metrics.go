// Package metrics объявляет метрики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests количество обработанных HTTP-запросов.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthEvents события аутентификации: register, login, refresh, logout, authenticate.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Authentication events by outcome.",
	}, []string{"event", "result"})

	// EntitlementDowngrades пользователи, потерявшие премиум при проверке.
	EntitlementDowngrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "entitlement_downgrades_total",
		Help: "Users whose premium flag was revoked after re-evaluation.",
	})
)

// AuthResult метка результата для AuthEvents.
func AuthResult(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
