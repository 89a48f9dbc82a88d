package config

import "fmt"

// ExpanderConfig defines the catalogs that drive candidate expansion.
// Catalog sizes bound the worst-case fetch volume per target, so they
// are part of the contract rather than an implementation accident.
type ExpanderConfig struct {
	EnvPrefixes      []string `json:"env_prefixes,omitempty" yaml:"env_prefixes,omitempty"`
	PivotLabels      []string `json:"pivot_labels,omitempty" yaml:"pivot_labels,omitempty"`
	CommonPaths      []string `json:"common_paths,omitempty" yaml:"common_paths,omitempty"`
	AddHashVariants  bool     `json:"add_hash_variants" yaml:"add_hash_variants"`
	AddAPIPermutions bool     `json:"add_api_permutations" yaml:"add_api_permutations"`
}

// NewDefaultExpanderConfig creates the built-in curated catalogs.
func NewDefaultExpanderConfig() ExpanderConfig {
	prefixes := []string{
		"dev", "stage", "staging", "uat", "qa", "test",
		"beta", "preprod", "preview", "internal", "canary", "sandbox",
	}
	for i := 1; i <= 10; i++ {
		prefixes = append(prefixes, fmt.Sprintf("v%d", i))
	}

	return ExpanderConfig{
		EnvPrefixes: prefixes,
		PivotLabels: []string{"api", "app", "admin", "panel"},
		CommonPaths: []string{
			"", "api", "api/v1", "api/v2", "v1", "v2", "v3",
			"swagger", "swagger.json", "swagger-ui", "api/docs",
			"openapi", "openapi.json", "docs", "doc",
			"graphql", "graphiql", "health", "status", "debug",
			"admin", "dashboard", "portal", "api-docs",
			".well-known/openid-configuration", ".well-known/security.txt",
		},
		AddHashVariants:  true,
		AddAPIPermutions: true,
	}
}
