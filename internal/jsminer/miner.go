package jsminer

import (
	"strings"
	"time"

	"envprobe/internal/classifier"
	"envprobe/internal/config"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
)

// New selects the configured mining strategy. Both strategies satisfy
// classifier.Scanner and share the same output contract, so the
// scheduler composes whichever one the configuration asks for.
func New(cfg config.MinerConfig, log zerolog.Logger) classifier.Scanner {
	pattern := NewPatternMiner(cfg, log)
	if cfg.JSMode == config.JSModeEval {
		return NewEvalMiner(pattern, time.Duration(cfg.EvalBudgetMS)*time.Millisecond, log)
	}
	return pattern
}

// IsJavaScript reports whether a fetch result should be mined: either
// the content type or the candidate path indicates JavaScript.
func IsJavaScript(cand models.Candidate, res *models.FetchResult) bool {
	ctype := res.ContentType()
	if strings.Contains(ctype, "javascript") || strings.Contains(ctype, "ecmascript") {
		return true
	}
	path := cand.Path
	if i := strings.Index(path, "#"); i != -1 {
		path = path[:i]
	}
	return strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".mjs")
}

// minable gates mining: successful JS responses only, and targets that
// are IP literals are excluded from JS-mining-heavy paths by policy.
func minable(cand models.Candidate, res *models.FetchResult) bool {
	if res.Failed() || res.StatusCode != 200 || cand.SourceIsIP {
		return false
	}
	return IsJavaScript(cand, res)
}
