// Package metrics publishes execution counters via expvar. Counters are
// process-global and readable from the server's /debug/vars and
// /metrics endpoints.
package metrics

import (
	"expvar"
)

var (
	executionsStarted  = new(expvar.Int)
	executionsByStatus = expvar.NewMap("agentflow_executions_total")
	activeExecutions   = new(expvar.Int)
	nodeExecutions     = expvar.NewMap("agentflow_node_executions_total")
	nodeFailures       = expvar.NewMap("agentflow_node_failures_total")
	tokensUsed         = new(expvar.Int)
	costTotal          = new(expvar.Float)
)

func init() {
	expvar.Publish("agentflow_executions_started_total", executionsStarted)
	expvar.Publish("agentflow_active_executions", activeExecutions)
	expvar.Publish("agentflow_tokens_used_total", tokensUsed)
	expvar.Publish("agentflow_cost_usd_total", costTotal)
}

// ExecutionStarted records a new run.
func ExecutionStarted() {
	executionsStarted.Add(1)
	activeExecutions.Add(1)
}

// ExecutionFinished records a run's terminal status and its totals.
func ExecutionFinished(status string, tokens int, cost float64) {
	executionsByStatus.Add(status, 1)
	activeExecutions.Add(-1)
	tokensUsed.Add(int64(tokens))
	costTotal.Add(cost)
}

// NodeExecuted records one node dispatch by type.
func NodeExecuted(nodeType string, success bool) {
	nodeExecutions.Add(nodeType, 1)
	if !success {
		nodeFailures.Add(nodeType, 1)
	}
}
