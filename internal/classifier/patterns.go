package classifier

import (
	"regexp"
	"strings"
)

// Known API-documentation path suffixes. Matched against the candidate
// path with any hash fragment stripped.
var apiDocSuffixes = []string{
	"/swagger.json", "/openapi.json", "/swagger", "/swagger-ui",
	"/api-docs", "/api/docs", "/openapi", "/graphql", "/graphiql", "/docs",
}

var (
	// Top-level swagger/openapi keys in a JSON body.
	apiDocBodyRegex = regexp.MustCompile(`(?i)"(swagger|openapi)"\s*:`)
	// GraphQL introspection markers.
	graphqlBodyRegex = regexp.MustCompile(`__schema|IntrospectionQuery`)
	// Sensitive path patterns for ConfigPathHit.
	sensitivePathRegexes = []*regexp.Regexp{
		regexp.MustCompile(`/internal(/|$)`),
		regexp.MustCompile(`/config(\.\w+)?$`),
		regexp.MustCompile(`/admin(/|$)`),
		regexp.MustCompile(`/debug(/|$)`),
		regexp.MustCompile(`(^|/)(api/)?v[0-9]+(/|$)`),
	}
	// <title> extraction for discovery detail.
	titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	// #/-style hash routes inside href/src attribute values.
	hashRouteRegex = regexp.MustCompile(`^(?:/?#/)|(?:/#/)`)
)

// effectivePath normalizes a raw candidate path for pattern matching:
// hash fragments are stripped and a leading slash enforced.
func effectivePath(raw string) string {
	if i := strings.Index(raw, "#"); i != -1 {
		raw = raw[:i]
	}
	return "/" + strings.Trim(raw, "/")
}

func matchesAPIDocSuffix(path string) bool {
	for _, suffix := range apiDocSuffixes {
		if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

func matchesSensitivePath(path string) bool {
	for _, re := range sensitivePathRegexes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
