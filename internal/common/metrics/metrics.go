// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_actions_dispatched_total",
			Help: "Total number of actions applied by the state store",
		},
		[]string{"action"},
	)

	WorkflowTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_workflow_ticks_total",
			Help: "Total number of workflow simulator ticks that advanced a step",
		},
	)

	WorkflowsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_workflows_completed_total",
			Help: "Total number of workflows driven to completion",
		},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_chat_requests_total",
			Help: "Total chat orchestration requests by outcome",
		},
		[]string{"outcome"},
	)

	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "assistant_chat_duration_seconds",
			Help: "Duration of chat orchestration requests in seconds",
		},
	)

	ReportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_report_requests_total",
			Help: "Total report generation requests by outcome",
		},
		[]string{"outcome"},
	)

	ReportCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_report_cache_hits_total",
			Help: "Report responses served from the cache",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_active_sessions",
			Help: "Number of live assistant sessions",
		},
	)
)
