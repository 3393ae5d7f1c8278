package delivery

import (
	"github.com/sipsyai/agentflow/internal/app/usecases"
	"github.com/sipsyai/agentflow/internal/core/flow"
)

// DefaultSinks wires the standard sink set for the output handler.
// Sinks needing external resources (email, database) are only included
// when provided.
func DefaultSinks(file *FileSink, webhook *WebhookSink, email *EmailSink, db *DatabaseSink) map[flow.OutputType]usecases.DeliverySink {
	sinks := map[flow.OutputType]usecases.DeliverySink{
		flow.OutputTypeResponse: NewResponseSink(),
	}
	if file != nil {
		sinks[flow.OutputTypeFile] = file
	}
	if webhook != nil {
		sinks[flow.OutputTypeWebhook] = webhook
	}
	if email != nil {
		sinks[flow.OutputTypeEmail] = email
	}
	if db != nil {
		sinks[flow.OutputTypeDatabase] = db
	}
	return sinks
}
