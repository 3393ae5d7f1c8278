package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/pkg/validation"
)

// InputHandler validates and coerces caller-supplied parameters against
// the node's declared field schema. All violations are collected and
// returned together; a valid run leaves the coerced values in both the
// context variables and data.
type InputHandler struct{}

// NewInputHandler creates the default input node handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Execute runs schema validation in field declaration order, then the
// custom cross-field rules. Caller-supplied keys not present in the
// schema pass through unchanged.
func (h *InputHandler) Execute(ctx context.Context, node *flow.Node, execCtx *dto.ExecutionContext) (*dto.NodeResult, error) {
	cfg := node.Input
	if cfg == nil {
		return &dto.NodeResult{Success: false, Error: flow.ErrVariantMismatch.Error()}, nil
	}
	input := execCtx.Variables

	var messages []string
	for _, field := range cfg.Fields {
		value, present := input[field.Name]
		messages = append(messages, validation.CheckField(field, value, present)...)
	}
	messages = append(messages, h.checkRules(cfg, input)...)

	if len(messages) > 0 {
		execCtx.Log(slog.LevelWarn, "input validation failed", node.NodeID, map[string]any{
			"violations": len(messages),
		})
		verr := &dto.ValidationError{Messages: messages}
		return &dto.NodeResult{Success: false, Error: verr.Error()}, nil
	}

	// Coercion pass: defaults, parsing, normalization. Unknown keys
	// are carried over untouched; the handler never drops input.
	coerced := make(map[string]any, len(input))
	declared := make(map[string]bool, len(cfg.Fields))
	for _, field := range cfg.Fields {
		declared[field.Name] = true
		value, present := input[field.Name]
		if v, ok := validation.CoerceField(field, value, present); ok {
			coerced[field.Name] = v
		}
	}
	for k, v := range input {
		if !declared[k] {
			coerced[k] = v
		}
	}

	for k, v := range coerced {
		execCtx.Variables[k] = v
	}
	execCtx.Log(slog.LevelInfo, "input validated", node.NodeID, map[string]any{
		"fields": len(cfg.Fields),
	})

	return &dto.NodeResult{
		Success: true,
		Output:  coerced,
		Data:    map[string]any{"input": coerced, node.NodeID: coerced},
	}, nil
}

// checkRules evaluates the custom validation rules after per-field
// checks: conditionalRequired and comparison.
func (h *InputHandler) checkRules(cfg *flow.InputConfig, input map[string]any) []string {
	var messages []string
	for _, rule := range cfg.Rules {
		switch rule.Type {
		case "conditionalRequired":
			other, ok := input[rule.OtherField]
			if !ok || fmt.Sprintf("%v", other) != fmt.Sprintf("%v", rule.Value) {
				continue
			}
			if v, present := input[rule.Field]; !present || v == nil || v == "" {
				messages = append(messages, ruleMessage(rule,
					fmt.Sprintf("field %q is required when %q is %v", rule.Field, rule.OtherField, rule.Value)))
			}
		case "comparison":
			left, lok := numericValue(input[rule.Field])
			right, rok := numericValue(input[rule.OtherField])
			if !lok || !rok {
				continue
			}
			var ok bool
			switch rule.Operator {
			case "lt":
				ok = left < right
			case "gt":
				ok = left > right
			default:
				continue
			}
			if !ok {
				messages = append(messages, ruleMessage(rule,
					fmt.Sprintf("field %q must be %s field %q", rule.Field, operatorWord(rule.Operator), rule.OtherField)))
			}
		}
	}
	return messages
}

func ruleMessage(rule flow.ValidationRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

func operatorWord(op string) string {
	if op == "lt" {
		return "less than"
	}
	return "greater than"
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
