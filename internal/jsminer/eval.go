package jsminer

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"envprobe/internal/models"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// Concatenation chains starting from a path-looking literal, evaluated
// piecewise when the full script cannot run (browser globals missing).
var concatExprRegex = regexp.MustCompile(`["']/[^\n"']+["'](?:\s*\+\s*[^\n;,)]+)+`)

// EvalMiner resolves dynamically constructed URL strings by executing
// the script body inside a goja interpreter. The VM gets no host
// bindings, so scripts have pure computation and nothing else; a
// wall-clock interrupt enforces the per-script budget. Any evaluation
// fault downgrades to the pattern miner's output for that body.
type EvalMiner struct {
	pattern *PatternMiner
	budget  time.Duration
	logger  zerolog.Logger
}

// NewEvalMiner creates an evaluation-mode JS miner wrapping the given
// pattern miner as its fallback.
func NewEvalMiner(pattern *PatternMiner, budget time.Duration, log zerolog.Logger) *EvalMiner {
	return &EvalMiner{
		pattern: pattern,
		budget:  budget,
		logger:  log.With().Str("component", "EvalMiner").Logger(),
	}
}

// Name implements classifier.Scanner.
func (em *EvalMiner) Name() string { return "jsminer-eval" }

// Scan implements classifier.Scanner. The pattern-mode result is
// always the baseline; evaluation can only add to it.
func (em *EvalMiner) Scan(cand models.Candidate, res *models.FetchResult) []models.Discovery {
	base := em.pattern.Scan(cand, res)
	if !minable(cand, res) {
		return base
	}

	values, err := em.evaluate(string(res.Body))
	if err != nil {
		em.logger.Debug().Err(err).Str("url", cand.URL()).Msg("JS evaluation fault, downgrading to pattern output")
		return base
	}

	seen := make(map[string]struct{}, len(base))
	for _, d := range base {
		seen[d.Key()] = struct{}{}
	}
	sourceURL := cand.URL()
	for _, v := range values {
		d := models.Discovery{Type: models.JsEndpoint, SourceURL: sourceURL, Value: v}
		if _, dup := seen[d.Key()]; dup {
			continue
		}
		seen[d.Key()] = struct{}{}
		base = append(base, d)
	}
	return base
}

// evaluate runs the script in a fresh sandboxed VM and harvests every
// URL-looking string it can reach. Scripts that reference browser
// globals throw early; globals bound before the throw survive, and
// concatenation chains are then retried piecewise against them. A
// budget interrupt or VM panic aborts the whole pass.
func (em *EvalMiner) evaluate(script string) (values []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("js evaluation panicked")
		}
	}()

	vm := goja.New()
	timer := time.AfterFunc(em.budget, func() {
		vm.Interrupt("eval budget exceeded")
	})
	defer timer.Stop()

	if _, runErr := vm.RunString(script); runErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) {
			return nil, errors.New("eval budget exceeded")
		}
		// Normal for browser-targeted scripts; globals defined before
		// the throw are still usable below.
		em.logger.Debug().Err(runErr).Msg("Full-script evaluation threw, harvesting partial state")
	}

	seen := make(map[string]struct{})
	harvest := func(s string) {
		if len(s) <= 3 {
			return
		}
		// Path-shaped or absolute URLs only. Bare keyword-ish strings
		// ("api_key_service") are noise, not endpoints.
		if !strings.HasPrefix(s, "/") &&
			!strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		values = append(values, s)
	}

	global := vm.GlobalObject()
	for _, key := range global.Keys() {
		if v := global.Get(key); v != nil {
			if s, ok := v.Export().(string); ok {
				harvest(s)
			}
		}
	}

	for _, expr := range concatExprRegex.FindAllString(script, -1) {
		val, runErr := vm.RunString(expr)
		if runErr != nil {
			var interrupted *goja.InterruptedError
			if errors.As(runErr, &interrupted) {
				return nil, errors.New("eval budget exceeded")
			}
			continue
		}
		if s, ok := val.Export().(string); ok {
			harvest(s)
		}
	}
	return values, nil
}
