// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodgestor"

var (
	InvoicesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Invoices created, by frozen currency.",
	}, []string{"currency"})

	RegistersOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "register_sessions_opened_total",
		Help:      "Cash-register sessions opened.",
	})

	RegistersClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "register_sessions_closed_total",
		Help:      "Cash-register sessions closed, by deviation level.",
	}, []string{"deviation"})

	StaleRegisters = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "register_sessions_stale",
		Help:      "Open sessions older than the configured threshold at the last check.",
	})

	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Notifications persisted and broadcast, by type.",
	}, []string{"type"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts, by result.",
	}, []string{"result"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Open notification sockets on this instance.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
