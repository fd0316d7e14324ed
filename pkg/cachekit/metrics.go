package cachekit

import "github.com/zeromicro/go-zero/core/metric"

const metricNamespace = "swapstats"

var (
	refreshTotal = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: metricNamespace,
		Subsystem: "cache",
		Name:      "refresh_total",
		Help:      "cache refresh attempts by entry and result",
		Labels:    []string{"entry", "result"},
	})
	refreshDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: metricNamespace,
		Subsystem: "cache",
		Name:      "refresh_duration_ms",
		Help:      "cache refresh duration in milliseconds",
		Labels:    []string{"entry"},
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
	entryAge = metric.NewGaugeVec(&metric.GaugeVecOpts{
		Namespace: metricNamespace,
		Subsystem: "cache",
		Name:      "age_minutes",
		Help:      "minutes since an entry was last computed",
		Labels:    []string{"entry"},
	})
)
