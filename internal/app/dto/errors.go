package dto

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingFlowID     = errors.New("missing flow ID")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrHandlerNotFound   = errors.New("no handler registered for node type")
)

// ValidationError carries every input violation found in one pass.
// Violations are always collected, never short-circuited.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "input validation failed: " + strings.Join(e.Messages, "; ")
}

// NotFoundError reports a missing agent, skill, flow, or node reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// TimeoutError reports an agent session exceeding its deadline.
type TimeoutError struct {
	NodeID  string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("node %s timed out after %s", e.NodeID, e.Timeout)
}

// ExecutionError reports a session-reported failure or transport fault.
type ExecutionError struct {
	NodeID string
	Reason string
	Detail string
}

func (e *ExecutionError) Error() string {
	if e.NodeID == "" {
		return e.Reason
	}
	return fmt.Sprintf("node %s failed: %s", e.NodeID, e.Reason)
}

// GraphIntegrityError reports a self-loop, duplicate, or cycle found at
// edit time. These never reach the engine.
type GraphIntegrityError struct {
	Code   string
	Reason string
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("graph integrity violation (%s): %s", e.Code, e.Reason)
}
