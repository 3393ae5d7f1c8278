// Package cost prices agent invocations from per-model token rates.
// The rate table is injected configuration so new models can be added
// without a code change.
package cost

// ModelRate holds the price per 1K tokens for one model.
type ModelRate struct {
	InputPer1K  float64 `json:"inputPer1k" yaml:"input_per_1k"`
	OutputPer1K float64 `json:"outputPer1k" yaml:"output_per_1k"`
}

// RateTable maps model names to their token rates, with a fallback rate
// applied to unknown models.
type RateTable struct {
	Rates    map[string]ModelRate `json:"rates" yaml:"rates"`
	Fallback ModelRate            `json:"fallback" yaml:"fallback"`
}

// DefaultRates returns the built-in rate table. Prices are USD per 1K
// tokens.
func DefaultRates() RateTable {
	return RateTable{
		Rates: map[string]ModelRate{
			"claude-3-5-haiku":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
			"claude-3-5-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-sonnet-4":   {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-opus-4":     {InputPer1K: 0.015, OutputPer1K: 0.075},
			"gpt-4o":            {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"gpt-4o-mini":       {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		},
		Fallback: ModelRate{InputPer1K: 0.003, OutputPer1K: 0.015},
	}
}

// RateFor returns the rate for a model, falling back for unknown names.
func (t RateTable) RateFor(model string) ModelRate {
	if r, ok := t.Rates[model]; ok {
		return r
	}
	return t.Fallback
}

// Calculate prices a call: (input*inputRate + output*outputRate) / 1000.
func (t RateTable) Calculate(model string, inputTokens, outputTokens int) float64 {
	r := t.RateFor(model)
	return (float64(inputTokens)*r.InputPer1K + float64(outputTokens)*r.OutputPer1K) / 1000
}
