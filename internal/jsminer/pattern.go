package jsminer

import (
	"regexp"
	"strings"

	"envprobe/internal/config"
	"envprobe/internal/models"

	"github.com/BishopFox/jsluice"
	"github.com/rs/zerolog"
)

// Regexes for path-like and parameter-like literals in script bodies.
var (
	absURLRegex    = regexp.MustCompile(`(?i)https?://[^\s"'<>]+`)
	relURLRegex    = regexp.MustCompile(`['"](/[^"']+?)['"]`)
	jsonRefRegex   = regexp.MustCompile(`[A-Za-z0-9_\-/]+\.json`)
	paramRegex     = regexp.MustCompile(`[?&]([a-zA-Z0-9_\-]+)=`)
	sensitiveRegex = regexp.MustCompile(`(?i)\b(token|secret|apikey|authorization|bearer|jwt)\b`)
)

// PatternMiner extracts endpoint-like strings and parameter names from
// JavaScript bodies with jsluice AST analysis plus a fixed regex
// catalog. It runs no code and its cost is linear in the body size,
// so it is safe on arbitrary untrusted input.
type paramHint struct {
	name string
	re   *regexp.Regexp
}

type PatternMiner struct {
	logger     zerolog.Logger
	paramHints []paramHint
}

// NewPatternMiner creates a pattern-mode JS miner. Param hints from the
// configuration are compiled into identifier-assignment probes.
func NewPatternMiner(cfg config.MinerConfig, log zerolog.Logger) *PatternMiner {
	pm := &PatternMiner{
		logger: log.With().Str("component", "PatternMiner").Logger(),
	}
	for _, hint := range cfg.ParamHints {
		re, err := regexp.Compile(`(?i)["']?` + regexp.QuoteMeta(hint) + `["']?\s*[:=]`)
		if err != nil {
			pm.logger.Warn().Err(err).Str("hint", hint).Msg("Skipping unusable param hint")
			continue
		}
		pm.paramHints = append(pm.paramHints, paramHint{name: hint, re: re})
	}
	return pm
}

// Name implements classifier.Scanner.
func (pm *PatternMiner) Name() string { return "jsminer-pattern" }

// Scan implements classifier.Scanner.
func (pm *PatternMiner) Scan(cand models.Candidate, res *models.FetchResult) []models.Discovery {
	if !minable(cand, res) {
		return nil
	}
	return pm.mine(cand, res.Body)
}

// mine runs the static extraction over a script body.
func (pm *PatternMiner) mine(cand models.Candidate, body []byte) []models.Discovery {
	sourceURL := cand.URL()
	seen := make(map[string]struct{})
	var discoveries []models.Discovery

	addEndpoint := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		key := "e|" + value
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		discoveries = append(discoveries, models.Discovery{
			Type:      models.JsEndpoint,
			SourceURL: sourceURL,
			Value:     value,
		})
	}
	addParam := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := "p|" + strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		discoveries = append(discoveries, models.Discovery{
			Type:      models.JsParameter,
			SourceURL: sourceURL,
			Value:     name,
		})
	}

	// AST pass: jsluice resolves URL-bearing expressions the plain
	// regexes would miss (fetch/xhr call sites, template fragments).
	analyzer := jsluice.NewAnalyzer(body)
	for _, u := range analyzer.GetURLs() {
		addEndpoint(u.URL)
		for _, p := range u.QueryParams {
			addParam(p)
		}
	}

	text := string(body)
	for _, m := range absURLRegex.FindAllString(text, -1) {
		addEndpoint(m)
	}
	for _, m := range relURLRegex.FindAllStringSubmatch(text, -1) {
		addEndpoint(m[1])
	}
	for _, m := range jsonRefRegex.FindAllString(text, -1) {
		if !strings.HasPrefix(m, "/") {
			m = "/" + m
		}
		addEndpoint(m)
	}
	for _, m := range paramRegex.FindAllStringSubmatch(text, -1) {
		addParam(m[1])
	}
	for _, m := range sensitiveRegex.FindAllString(text, -1) {
		addEndpoint("SENSITIVE:" + strings.ToLower(m))
	}
	for _, hint := range pm.paramHints {
		if hint.re.MatchString(text) {
			addParam(hint.name)
		}
	}

	pm.logger.Debug().
		Str("source_url", sourceURL).
		Int("count", len(discoveries)).
		Msg("Pattern mining finished")
	return discoveries
}
