package usecases

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/core/template"
)

// OutputHandler formats the accumulated result and dispatches it to the
// sink registered for the node's output type. Format-specific delivery
// stays in the sinks; the handler owns formatting and wrapping only.
type OutputHandler struct {
	sinks map[flow.OutputType]DeliverySink
}

// NewOutputHandler wires the output node handler with its delivery
// collaborators.
func NewOutputHandler(sinks map[flow.OutputType]DeliverySink) *OutputHandler {
	return &OutputHandler{sinks: sinks}
}

// Execute formats, wraps, and delivers the run result. Output nodes
// complete the chain, so a successful delivery halts the run with
// success even if a successor is wired in.
func (h *OutputHandler) Execute(ctx context.Context, node *flow.Node, execCtx *dto.ExecutionContext) (*dto.NodeResult, error) {
	cfg := node.Output
	if cfg == nil {
		return &dto.NodeResult{Success: false, Error: flow.ErrVariantMismatch.Error()}, nil
	}

	result := h.resolveResult(execCtx)
	if cfg.TransformTemplate != "" {
		result = template.Interpolate(cfg.TransformTemplate, execCtx.Data, execCtx.Variables)
	}

	payload, contentType, err := h.format(cfg, result, execCtx)
	if err != nil {
		exErr := &dto.ExecutionError{NodeID: node.NodeID, Reason: fmt.Sprintf("formatting failed: %v", err)}
		return &dto.NodeResult{Success: false, Error: exErr.Error()}, nil
	}

	sink, ok := h.sinks[cfg.OutputType]
	if !ok {
		exErr := &dto.ExecutionError{NodeID: node.NodeID, Reason: fmt.Sprintf("no sink for output type %q", cfg.OutputType)}
		return &dto.NodeResult{Success: false, Error: exErr.Error()}, nil
	}

	delivered, err := sink.Deliver(ctx, cfg, payload, contentType)
	if err != nil {
		exErr := &dto.ExecutionError{NodeID: node.NodeID, Reason: fmt.Sprintf("delivery failed: %v", err)}
		return &dto.NodeResult{Success: false, Error: exErr.Error()}, nil
	}

	execCtx.Log(slog.LevelInfo, "output delivered", node.NodeID, map[string]any{
		"output_type": string(cfg.OutputType),
		"format":      string(cfg.Format),
	})
	return &dto.NodeResult{
		Success: true,
		Output:  delivered,
		Data:    map[string]any{node.NodeID: delivered},
		Halt:    true,
	}, nil
}

// resolveResult picks the value to deliver: the generic result key when
// an agent node produced one, otherwise the full accumulated data.
func (h *OutputHandler) resolveResult(execCtx *dto.ExecutionContext) any {
	if r, ok := execCtx.Data["result"]; ok {
		return r
	}
	return execCtx.Data
}

// format renders the result per the configured format and applies the
// metadata/timestamp wrapping.
func (h *OutputHandler) format(cfg *flow.OutputConfig, result any, execCtx *dto.ExecutionContext) ([]byte, string, error) {
	switch cfg.Format {
	case flow.FormatJSON:
		doc := map[string]any{"result": result}
		if cfg.IncludeMetadata {
			doc["metadata"] = map[string]any{
				"executionId": execCtx.ExecutionID,
				"flowId":      execCtx.FlowID,
			}
		}
		if cfg.IncludeTimestamp {
			doc["timestamp"] = time.Now().UTC().Format(time.RFC3339)
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		return out, "application/json", err
	case flow.FormatMarkdown:
		body := h.textual(result)
		if cfg.IncludeTimestamp {
			body = fmt.Sprintf("%s\n\n---\n_Generated at %s_\n", body, time.Now().UTC().Format(time.RFC3339))
		}
		return []byte(body), "text/markdown", nil
	case flow.FormatText, "":
		body := h.textual(result)
		if cfg.IncludeTimestamp {
			body = fmt.Sprintf("%s\n\nGenerated at %s\n", body, time.Now().UTC().Format(time.RFC3339))
		}
		return []byte(body), "text/plain", nil
	case flow.FormatHTML:
		body := fmt.Sprintf("<html><body><pre>%s</pre></body></html>", h.textual(result))
		return []byte(body), "text/html", nil
	case flow.FormatCSV:
		out, err := h.formatCSV(result)
		return out, "text/csv", err
	case flow.FormatZip:
		inner, _, err := h.format(&flow.OutputConfig{
			Format:           flow.FormatText,
			IncludeTimestamp: cfg.IncludeTimestamp,
		}, result, execCtx)
		if err != nil {
			return nil, "", err
		}
		name := cfg.FileName
		if name == "" {
			name = "result.txt"
		}
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create(name)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(inner); err != nil {
			return nil, "", err
		}
		if err := zw.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/zip", nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", cfg.Format)
	}
}

// formatCSV renders list-of-record results as rows with a stable
// header; anything else becomes a single-cell document.
func (h *OutputHandler) formatCSV(result any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records, ok := result.([]map[string]any)
	if !ok {
		if anyList, isList := result.([]any); isList {
			records = make([]map[string]any, 0, len(anyList))
			for _, item := range anyList {
				m, isMap := item.(map[string]any)
				if !isMap {
					records = nil
					break
				}
				records = append(records, m)
			}
			ok = len(records) == len(anyList)
		}
	}
	if !ok || len(records) == 0 {
		if err := w.Write([]string{h.textual(result)}); err != nil {
			return nil, err
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	var header []string
	for k := range records[0] {
		header = append(header, k)
	}
	sort.Strings(header)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = fmt.Sprintf("%v", rec[k])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// textual renders any result as a string, pretty-printing composites.
func (h *OutputHandler) textual(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}
