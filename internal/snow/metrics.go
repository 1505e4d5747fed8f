package snow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snowgate",
		Subsystem: "table_api",
		Name:      "requests_total",
		Help:      "Table API requests by table, method and outcome",
	}, []string{"table", "method", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snowgate",
		Subsystem: "table_api",
		Name:      "request_duration_seconds",
		Help:      "Table API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table", "method"})
)
