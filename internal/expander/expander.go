package expander

import (
	"strings"

	"envprobe/internal/config"
	"envprobe/internal/models"
)

// Expander generates environment-subdomain and path permutations for a
// target. It is a pure function of its catalogs: the same target and
// catalog version always produce the identical ordered sequence.
type Expander struct {
	cfg   config.ExpanderConfig
	paths []string
}

// NewExpander creates an Expander, pre-building the path catalog with
// SPA hash-route variants.
func NewExpander(cfg config.ExpanderConfig) *Expander {
	return &Expander{
		cfg:   cfg,
		paths: buildPathVariants(cfg.CommonPaths, cfg.AddHashVariants),
	}
}

// buildPathVariants expands the path catalog with hash-route variants
// so SPA routers answering only on fragment routes are still probed.
func buildPathVariants(paths []string, hashVariants bool) []string {
	var all []string
	for _, p := range paths {
		if p == "" || p == "/" {
			all = append(all, "")
			if hashVariants {
				all = append(all, "#", "/#", "/#/")
			}
			continue
		}
		all = append(all, p)
		if hashVariants {
			all = append(all, "#/"+p, "/#/"+p, p+"#", p+"#/")
		}
	}

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, p := range all {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Hosts returns the ordered environment-subdomain permutations for a
// target, the original host first. Single-label hosts are returned as-is.
func (e *Expander) Hosts(t models.Target) []string {
	host := t.Host
	parts := strings.Split(host, ".")
	if len(parts) < 2 || t.IsIP {
		return []string{host}
	}

	root := strings.Join(parts[len(parts)-2:], ".")
	baseLabel := parts[0]
	left := parts[:len(parts)-2]

	seen := map[string]struct{}{host: {}}
	hosts := []string{host}
	add := func(h string) {
		if _, dup := seen[h]; dup {
			return
		}
		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}

	for _, env := range e.cfg.EnvPrefixes {
		add(env + "." + host)
		add(env + "-" + baseLabel + "." + root)
		add(baseLabel + "-" + env + "." + root)
		if len(left) > 0 {
			add(env + "." + strings.Join(left, ".") + "." + root)
			for _, lbl := range e.cfg.PivotLabels {
				add(env + "-" + lbl + "." + host)
				add(lbl + "-" + env + "." + host)
				add(lbl + "." + env + "." + host)
			}
		}
	}

	if e.cfg.AddAPIPermutions && !strings.Contains(host, "api") {
		add("api." + host)
		for _, env := range e.cfg.EnvPrefixes {
			add("api-" + env + "." + host)
			add(env + "-api." + host)
		}
	}

	return hosts
}

// Candidates returns the full ordered candidate sequence for a target:
// every permuted host crossed with every path catalog entry, original
// host first, catalog order throughout. Candidates default to https;
// the fetcher owns the http fallback.
func (e *Expander) Candidates(t models.Target) []models.Candidate {
	hosts := e.Hosts(t)
	candidates := make([]models.Candidate, 0, len(hosts)*len(e.paths))
	for _, host := range hosts {
		for _, path := range e.paths {
			candidates = append(candidates, models.Candidate{
				Scheme:     "https",
				Host:       host,
				Path:       path,
				SourceHost: t.Host,
				SourceIsIP: t.IsIP,
				Permuted:   host != t.Host,
			})
		}
	}
	return candidates
}

// MaxCandidatesPerTarget is the documented upper bound on expansion
// volume for a single target under the current catalogs. It caps the
// worst-case fetch volume and is part of the expander's contract.
func (e *Expander) MaxCandidatesPerTarget() int {
	p := len(e.cfg.EnvPrefixes)
	l := len(e.cfg.PivotLabels)
	// original + per-prefix permutations + api variants
	maxHosts := 1 + p*(4+3*l) + (1 + 2*p)
	return maxHosts * len(e.paths)
}
