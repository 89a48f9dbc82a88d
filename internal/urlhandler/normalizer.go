package urlhandler

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"envprobe/internal/errorwrapper"
	"envprobe/internal/models"
)

var hostnameShapeRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// NormalizeTarget canonicalizes a raw input line into a bare hostname.
// It strips scheme, userinfo, port and any path/query/fragment suffix,
// then lowercases the result. IP literals are flagged, not rejected;
// anything failing the hostname shape check is rejected.
func NormalizeTarget(line string) (models.Target, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return models.Target{}, errorwrapper.WrapError(errorwrapper.ErrInvalidInput, "empty input line")
	}

	host := raw
	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, "@"); idx != -1 {
		host = host[idx+1:]
	}
	// Bracketed IPv6 literals carry their port outside the brackets;
	// bare IPv6 literals are all colons and must not be port-stripped.
	if strings.HasPrefix(host, "[") {
		end := strings.Index(host, "]")
		if end == -1 {
			return models.Target{}, errorwrapper.WrapError(errorwrapper.ErrInvalidInput,
				fmt.Sprintf("unterminated bracket in host %q", host))
		}
		host = host[1:end]
	} else if net.ParseIP(host) == nil {
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if host == "" {
		return models.Target{}, errorwrapper.WrapError(errorwrapper.ErrInvalidInput,
			fmt.Sprintf("no host in input line %q", raw))
	}
	if strings.ContainsAny(host, " \t") {
		return models.Target{}, errorwrapper.WrapError(errorwrapper.ErrInvalidInput,
			fmt.Sprintf("host %q contains whitespace", host))
	}

	if ip := net.ParseIP(host); ip != nil {
		return models.Target{Raw: raw, Host: host, IsIP: true}, nil
	}

	if !hostnameShapeRegex.MatchString(host) {
		return models.Target{}, errorwrapper.WrapError(errorwrapper.ErrInvalidInput,
			fmt.Sprintf("host %q fails hostname shape check", host))
	}

	return models.Target{Raw: raw, Host: host}, nil
}
