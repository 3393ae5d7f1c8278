package dto

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogEntry is one line of a run's execution trace.
type LogEntry struct {
	Level     slog.Level     `json:"level"`
	Message   string         `json:"message"`
	NodeID    string         `json:"node_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ExecutionContext is the per-run mutable state threaded by reference
// through every handler call: caller-supplied variables (highest
// precedence), data accumulated from node outputs, the original input
// snapshot, and a log sink. It is created once per flow invocation,
// exclusively owned by that run's goroutine, and discarded at run end.
// The log buffer alone is guarded because monitors may read it while
// the run is live.
type ExecutionContext struct {
	ExecutionID string
	FlowID      string
	Variables   map[string]any
	Data        map[string]any
	Input       map[string]any

	logger *slog.Logger
	mu     sync.Mutex
	logs   []LogEntry
}

// NewExecutionContext builds a fresh context for one run. A nil logger
// falls back to slog.Default.
func NewExecutionContext(executionID, flowID string, input map[string]any, logger *slog.Logger) *ExecutionContext {
	if logger == nil {
		logger = slog.Default()
	}
	vars := make(map[string]any, len(input))
	snapshot := make(map[string]any, len(input))
	for k, v := range input {
		vars[k] = v
		snapshot[k] = v
	}
	return &ExecutionContext{
		ExecutionID: executionID,
		FlowID:      flowID,
		Variables:   vars,
		Data:        make(map[string]any),
		Input:       snapshot,
		logger:      logger.With("execution_id", executionID, "flow_id", flowID),
	}
}

// Log records an entry in the run trace and forwards it to the
// structured logger.
func (c *ExecutionContext) Log(level slog.Level, msg, nodeID string, meta map[string]any) {
	entry := LogEntry{
		Level:     level,
		Message:   msg,
		NodeID:    nodeID,
		Meta:      meta,
		Timestamp: time.Now(),
	}
	c.mu.Lock()
	c.logs = append(c.logs, entry)
	c.mu.Unlock()

	attrs := make([]any, 0, 2+2*len(meta))
	if nodeID != "" {
		attrs = append(attrs, "node_id", nodeID)
	}
	for k, v := range meta {
		attrs = append(attrs, k, v)
	}
	c.logger.Log(context.Background(), level, msg, attrs...)
}

// Logs returns a copy of the run trace so far.
func (c *ExecutionContext) Logs() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// MergeData copies node output data into the shared context.
func (c *ExecutionContext) MergeData(data map[string]any) {
	for k, v := range data {
		c.Data[k] = v
	}
}
