// Package agentflow provides a minimal public façade for defining and
// executing flows without importing internal packages. It re-exports
// the core flow types for convenience and exposes a Runtime with simple
// methods to register content, save flows, and run them.
package agentflow
