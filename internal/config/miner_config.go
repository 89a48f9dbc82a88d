package config

// JS mining strategies.
const (
	JSModePattern = "pattern"
	JSModeEval    = "eval"
)

// MinerConfig defines configuration for JavaScript asset mining.
type MinerConfig struct {
	JSMode            string   `json:"js_mode,omitempty" yaml:"js_mode,omitempty" validate:"omitempty,oneof=pattern eval"`
	EvalBudgetMS      int      `json:"eval_budget_ms,omitempty" yaml:"eval_budget_ms,omitempty" validate:"gte=10"`
	MaxJSFetchPerPage int      `json:"max_js_fetch_per_page,omitempty" yaml:"max_js_fetch_per_page,omitempty" validate:"gte=0"`
	ParamHints        []string `json:"param_hints,omitempty" yaml:"param_hints,omitempty"`
}

// NewDefaultMinerConfig creates default miner configuration. The eval
// budget is the hard wall-clock limit per script in evaluation mode.
func NewDefaultMinerConfig() MinerConfig {
	return MinerConfig{
		JSMode:            JSModePattern,
		EvalBudgetMS:      1000,
		MaxJSFetchPerPage: 25,
		ParamHints: []string{
			"id", "page", "limit", "offset", "token",
			"auth", "user", "q", "query", "search",
		},
	}
}
