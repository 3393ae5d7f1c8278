package dto

import (
	"time"
)

// ExecutionRequest triggers one flow run.
type ExecutionRequest struct {
	FlowID      string         `json:"flow_id"`
	Input       map[string]any `json:"input,omitempty"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// Validate checks the request before execution.
func (r *ExecutionRequest) Validate() error {
	if r.FlowID == "" {
		return ErrMissingFlowID
	}
	return nil
}

// ExecutionStatus tracks a run through its lifecycle.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// NodeExecution records one node's run within a flow execution.
type NodeExecution struct {
	NodeID     string          `json:"node_id"`
	NodeType   string          `json:"node_type"`
	Status     ExecutionStatus `json:"status"`
	Output     any             `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	Attempts   int             `json:"attempts"`
	TokensUsed int             `json:"tokens_used,omitempty"`
	Cost       float64         `json:"cost,omitempty"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Duration   time.Duration   `json:"duration"`
}

// ExecutionResult is the terminal outcome of a flow run.
type ExecutionResult struct {
	ExecutionID    string          `json:"execution_id"`
	FlowID         string          `json:"flow_id"`
	Success        bool            `json:"success"`
	Status         ExecutionStatus `json:"status"`
	Output         any             `json:"output,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorNodeID    string          `json:"error_node_id,omitempty"`
	ErrorDetail    string          `json:"error_detail,omitempty"`
	ExecutionTime  time.Duration   `json:"execution_time"`
	TokensUsed     int             `json:"tokens_used"`
	Cost           float64         `json:"cost"`
	NodeExecutions []NodeExecution `json:"node_executions"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
}

// EventType tags entries on the execution event stream.
type EventType string

const (
	EventStatus EventType = "status"
	EventResult EventType = "result"
	EventError  EventType = "error"
)

// ExecutionEvent is one entry on the stream returned by ExecuteStream:
// status updates while nodes run, then exactly one result or error
// event before the channel closes.
type ExecutionEvent struct {
	Type        EventType        `json:"type"`
	ExecutionID string           `json:"execution_id"`
	NodeID      string           `json:"node_id,omitempty"`
	Status      ExecutionStatus  `json:"status,omitempty"`
	Message     string           `json:"message,omitempty"`
	Result      *ExecutionResult `json:"result,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NodeResult is what a node handler returns to the engine. Data is
// merged into the shared context; Output joins the externally visible
// trace. Halt stops the run successfully without following the chain
// further.
type NodeResult struct {
	Success    bool           `json:"success"`
	Output     any            `json:"output,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	Halt       bool           `json:"halt,omitempty"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Cost       float64        `json:"cost,omitempty"`
}
