// Package flow defines domain-specific errors
package flow

import "errors"

var (
	// Flow errors
	ErrInvalidFlowName     = errors.New("invalid flow name")
	ErrFlowNotFound        = errors.New("flow not found")
	ErrDuplicateNodeID     = errors.New("duplicate node ID")
	ErrDanglingNextNode    = errors.New("nextNodeId references a missing node")
	ErrMultipleEntryPoints = errors.New("flow has more than one entry point")
	ErrNoEntryPoint        = errors.New("flow has no entry point")

	// Node errors
	ErrInvalidNodeID   = errors.New("invalid node ID")
	ErrInvalidNodeName = errors.New("invalid node name")
	ErrInvalidNodeType = errors.New("invalid node type")
	ErrVariantMismatch = errors.New("node config does not match node type")
	ErrMissingAgentID  = errors.New("agent node missing agentId")

	// Schedule errors
	ErrInvalidSchedule       = errors.New("invalid schedule configuration")
	ErrInvalidCronExpression = errors.New("invalid cron expression")
	ErrInvalidInterval       = errors.New("invalid interval configuration")
)
