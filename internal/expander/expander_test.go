package expander

import (
	"reflect"
	"strings"
	"testing"

	"envprobe/internal/config"
	"envprobe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() config.ExpanderConfig {
	return config.ExpanderConfig{
		EnvPrefixes:      []string{"dev", "stage"},
		PivotLabels:      []string{"api"},
		CommonPaths:      []string{"", "admin"},
		AddHashVariants:  true,
		AddAPIPermutions: true,
	}
}

func TestCandidatesDeterministic(t *testing.T) {
	exp := NewExpander(smallConfig())
	target := models.Target{Raw: "app.example.com", Host: "app.example.com"}

	first := exp.Candidates(target)
	second := exp.Candidates(target)
	require.NotEmpty(t, first)
	assert.True(t, reflect.DeepEqual(first, second), "two expansions of the same target must be identical")
}

func TestCandidatesWithinBound(t *testing.T) {
	tests := []struct {
		name string
		host string
	}{
		{"two labels", "example.com"},
		{"three labels", "app.example.com"},
		{"four labels", "portal.app.example.com"},
	}

	exp := NewExpander(config.NewDefaultExpanderConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := exp.Candidates(models.Target{Raw: tt.host, Host: tt.host})
			assert.LessOrEqual(t, len(cands), exp.MaxCandidatesPerTarget())
		})
	}
}

func TestHostsOriginalFirst(t *testing.T) {
	exp := NewExpander(smallConfig())
	hosts := exp.Hosts(models.Target{Host: "app.example.com"})

	require.NotEmpty(t, hosts)
	assert.Equal(t, "app.example.com", hosts[0])
	assert.Contains(t, hosts, "dev.app.example.com")
	assert.Contains(t, hosts, "dev-app.example.com")
	assert.Contains(t, hosts, "app-dev.example.com")
	assert.Contains(t, hosts, "api-dev.app.example.com")

	seen := make(map[string]struct{})
	for _, h := range hosts {
		_, dup := seen[h]
		assert.False(t, dup, "duplicate host %q", h)
		seen[h] = struct{}{}
	}
}

func TestHostsSkipAPIVariantsWhenPresent(t *testing.T) {
	exp := NewExpander(smallConfig())
	hosts := exp.Hosts(models.Target{Host: "api.example.com"})
	assert.NotContains(t, hosts, "api.api.example.com")
}

func TestHostsSingleLabelAndIPPassThrough(t *testing.T) {
	exp := NewExpander(smallConfig())

	assert.Equal(t, []string{"intranet"}, exp.Hosts(models.Target{Host: "intranet"}))
	assert.Equal(t, []string{"192.168.0.1"}, exp.Hosts(models.Target{Host: "192.168.0.1", IsIP: true}))
}

func TestCandidateMetadata(t *testing.T) {
	exp := NewExpander(smallConfig())
	target := models.Target{Raw: "https://example.com", Host: "example.com"}

	for _, cand := range exp.Candidates(target) {
		assert.Equal(t, "https", cand.Scheme)
		assert.Equal(t, "example.com", cand.SourceHost)
		assert.Equal(t, cand.Host != "example.com", cand.Permuted)
		assert.True(t, strings.HasSuffix(cand.Host, "example.com"), "host %q escaped the target scope", cand.Host)
	}
}

func TestBuildPathVariants(t *testing.T) {
	paths := buildPathVariants([]string{"", "admin"}, true)
	assert.Equal(t, []string{"", "#", "/#", "/#/", "admin", "#/admin", "/#/admin", "admin#", "admin#/"}, paths)

	plain := buildPathVariants([]string{"", "admin"}, false)
	assert.Equal(t, []string{"", "admin"}, plain)
}
