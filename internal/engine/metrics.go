package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seilor",
		Subsystem: "engine",
		Name:      "quotes_issued_total",
		Help:      "Quotes issued, by direction.",
	}, []string{"direction"})

	tradesTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seilor",
		Subsystem: "engine",
		Name:      "trades_terminal_total",
		Help:      "Trades reaching a terminal state, by direction and status.",
	}, []string{"direction", "status"})

	settlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "seilor",
		Subsystem: "engine",
		Name:      "settlement_seconds",
		Help:      "Wall time spent in the settlement submit call.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)
