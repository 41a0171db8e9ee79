// Package llm provides the language-model client used by the classification
// and summarization stages, with per-task model selection.
package llm

// ModelTier selects the model capability level for a task.
type ModelTier string

const (
	// TierLite is for high-volume structured tasks: document classification.
	TierLite ModelTier = "lite"
	// TierStandard is for narrative generation: weekly summaries.
	TierStandard ModelTier = "standard"
)

// Config maps task tiers to concrete model identifiers.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// Model returns the model identifier for a tier, falling back to the lite
// model when the tier has no explicit mapping.
func (c *Config) Model(tier ModelTier) string {
	if m, ok := c.Models[tier]; ok && m != "" {
		return m
	}
	if m, ok := c.Models[TierLite]; ok {
		return m
	}
	return ""
}

// WithModel returns a copy of the config with one tier overridden.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{Models: make(map[ModelTier]string, len(c.Models))}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
