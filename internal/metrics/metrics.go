// Package metrics はPrometheusのメトリクスを定義します。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Register, login and logout attempts by result",
		},
		[]string{"event", "result"},
	)
	TaskOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_operations_total",
			Help: "Task create, update and delete operations by result",
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, AuthEvents, TaskOperations)
}

// Result はエラーの有無をラベル値に変換します。
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
