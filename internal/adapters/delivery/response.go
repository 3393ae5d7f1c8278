// Package delivery provides the output-node sinks: thin collaborators
// that move a formatted payload to its destination (response, file,
// webhook, email, database).
package delivery

import (
	"context"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// ResponseSink returns the formatted payload to the caller as the run
// output.
type ResponseSink struct{}

// NewResponseSink creates the response sink.
func NewResponseSink() *ResponseSink {
	return &ResponseSink{}
}

// Deliver returns the payload unchanged. Binary formats stay []byte;
// textual formats surface as strings.
func (s *ResponseSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	if cfg.Format == flow.FormatZip {
		return payload, nil
	}
	return string(payload), nil
}
