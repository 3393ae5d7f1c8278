// Package flow provides node definitions for the persisted chain model.
package flow

// NodeType discriminates the node variants. The set is closed: every
// type has exactly one matching config struct, and Validate enforces
// the pairing so handlers can rely on the variant being populated.
type NodeType string

const (
	// NodeTypeInput validates and coerces caller-supplied parameters.
	NodeTypeInput NodeType = "input"
	// NodeTypeAgent invokes the external AI execution runtime.
	NodeTypeAgent NodeType = "agent"
	// NodeTypeOutput formats and delivers the accumulated result.
	NodeTypeOutput NodeType = "output"
)

// Position holds canvas coordinates. Not meaningful to execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one stage of a flow. It is a tagged union discriminated by
// Type: exactly one of Input, Agent, Output is non-nil.
type Node struct {
	NodeID      string         `json:"nodeId"`
	Type        NodeType       `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Position    Position       `json:"position"`
	NextNodeID  string         `json:"nextNodeId,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	Input  *InputConfig  `json:"input,omitempty"`
	Agent  *AgentConfig  `json:"agent,omitempty"`
	Output *OutputConfig `json:"output,omitempty"`
}

// FieldType enumerates the supported input field types.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeURL         FieldType = "url"
	FieldTypeEmail       FieldType = "email"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeDate        FieldType = "date"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeFile        FieldType = "file"
)

// Field declares one input parameter: its type, whether it is required,
// and the constraints applied during validation.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Default  any       `json:"default,omitempty"`
	Pattern  string    `json:"pattern,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// ValidationRule is a cross-field rule evaluated after per-field checks.
// Type "conditionalRequired": Field is required iff OtherField equals Value.
// Type "comparison": Field must compare (Operator "lt"/"gt") against OtherField.
type ValidationRule struct {
	Type       string `json:"type"`
	Field      string `json:"field"`
	OtherField string `json:"otherField"`
	Value      any    `json:"value,omitempty"`
	Operator   string `json:"operator,omitempty"`
	Message    string `json:"message,omitempty"`
}

// InputConfig holds the declared fields of an input node.
type InputConfig struct {
	Fields []Field          `json:"fields"`
	Rules  []ValidationRule `json:"rules,omitempty"`
}

// AgentConfig references an externally stored agent definition and the
// invocation parameters for the execution runtime.
type AgentConfig struct {
	AgentID        string   `json:"agentId"`
	PromptTemplate string   `json:"promptTemplate"`
	SkillIDs       []string `json:"skillIds,omitempty"`
	// ModelOverride is "default" or an explicit model name.
	ModelOverride string `json:"modelOverride,omitempty"`
	MaxTokens     int    `json:"maxTokens,omitempty"`
	// TimeoutMs is the wall-clock budget for one runtime session.
	TimeoutMs    int  `json:"timeout,omitempty"`
	RetryOnError bool `json:"retryOnError,omitempty"`
	MaxRetries   int  `json:"maxRetries,omitempty"`
}

// OutputType enumerates delivery targets.
type OutputType string

const (
	OutputTypeResponse OutputType = "response"
	OutputTypeFile     OutputType = "file"
	OutputTypeDatabase OutputType = "database"
	OutputTypeWebhook  OutputType = "webhook"
	OutputTypeEmail    OutputType = "email"
)

// OutputFormat enumerates result formats.
type OutputFormat string

const (
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
	FormatText     OutputFormat = "text"
	FormatHTML     OutputFormat = "html"
	FormatCSV      OutputFormat = "csv"
	FormatZip      OutputFormat = "zip"
)

// OutputConfig controls formatting and delivery of the flow result.
type OutputConfig struct {
	OutputType        OutputType        `json:"outputType"`
	Format            OutputFormat      `json:"format"`
	FilePath          string            `json:"filePath,omitempty"`
	FileName          string            `json:"fileName,omitempty"`
	WebhookURL        string            `json:"webhookUrl,omitempty"`
	WebhookHeaders    map[string]string `json:"webhookHeaders,omitempty"`
	EmailTo           string            `json:"emailTo,omitempty"`
	EmailSubject      string            `json:"emailSubject,omitempty"`
	TableName         string            `json:"tableName,omitempty"`
	IncludeMetadata   bool              `json:"includeMetadata,omitempty"`
	IncludeTimestamp  bool              `json:"includeTimestamp,omitempty"`
	TransformTemplate string            `json:"transformTemplate,omitempty"`
}

// Validate ensures node integrity: ID, name, and a config matching the
// declared type, with the other variants absent.
func (n *Node) Validate() error {
	if n.NodeID == "" {
		return ErrInvalidNodeID
	}
	if n.Name == "" {
		return ErrInvalidNodeName
	}
	switch n.Type {
	case NodeTypeInput:
		if n.Input == nil || n.Agent != nil || n.Output != nil {
			return ErrVariantMismatch
		}
	case NodeTypeAgent:
		if n.Agent == nil || n.Input != nil || n.Output != nil {
			return ErrVariantMismatch
		}
		if n.Agent.AgentID == "" {
			return ErrMissingAgentID
		}
	case NodeTypeOutput:
		if n.Output == nil || n.Input != nil || n.Agent != nil {
			return ErrVariantMismatch
		}
	case "":
		return ErrInvalidNodeType
	default:
		// Custom node types carry their configuration in Metadata and
		// must not claim one of the built-in variants.
		if n.Input != nil || n.Agent != nil || n.Output != nil {
			return ErrVariantMismatch
		}
	}
	return nil
}
