package pricing

import (
	"maps"
	"slices"
)

// Price is the cost in USD per 1000 tokens.
type Price struct {
	Prompt     float64 `json:"prompt" yaml:"prompt" toml:"prompt" validate:"gte=0"`
	Completion float64 `json:"completion" yaml:"completion" toml:"completion" validate:"gte=0"`
}

// Table maps a model identifier to its price.
type Table map[string]Price

// Default is the published Sonar price list.
var Default = Table{
	"sonar":               {Prompt: 0.001, Completion: 0.001},
	"sonar-pro":           {Prompt: 0.003, Completion: 0.015},
	"sonar-reasoning":     {Prompt: 0.001, Completion: 0.005},
	"sonar-reasoning-pro": {Prompt: 0.002, Completion: 0.008},
	"sonar-deep-research": {Prompt: 0.002, Completion: 0.008},
}

// Merge returns a copy of t with the overrides applied.
func (t Table) Merge(overrides Table) Table {
	res := make(Table, len(t)+len(overrides))
	maps.Copy(res, t)
	maps.Copy(res, overrides)
	return res
}

// Models returns the sorted model identifiers.
func (t Table) Models() []string {
	return slices.Sorted(maps.Keys(t))
}

// Estimate returns the cost of a call, and false if the model has no price.
func (t Table) Estimate(model string, promptTokens, completionTokens int64) (float64, bool) {
	p, ok := t[model]
	if !ok {
		return 0, false
	}
	cost := float64(promptTokens)/1000*p.Prompt + float64(completionTokens)/1000*p.Completion
	return cost, true
}
