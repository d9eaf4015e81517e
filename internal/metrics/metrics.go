// Package metrics содержит метрики Prometheus, которые собирает навык-мост.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы обработки хода диалога
const (
	OutcomeOK                = "ok"
	OutcomeTransportFailure  = "transport_failure"
	OutcomeProtocolViolation = "protocol_violation"
	OutcomeUnknownIntent     = "unknown_intent"
	OutcomeStoreFailure      = "store_failure"
)

var (
	// TurnsTotal считает обработанные ходы по интенту и исходу
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skill_bridge_turns_total",
		Help: "Total number of dialog turns handled by the bridge",
	}, []string{"intent", "outcome"})

	// SessionsEnded считает ходы, в которых удалённый навык завершил сессию
	SessionsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skill_bridge_sessions_ended_total",
		Help: "Total number of turns that closed the conversation",
	})

	// RPCDuration — длительность вызова удалённого обработчика
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skill_bridge_rpc_duration_seconds",
		Help:    "Latency of remote skill handler invocations",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
)
