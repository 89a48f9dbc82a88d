package models

import (
	"fmt"
	"strings"
)

// DiscoveryType enumerates the kinds of findings the pipeline reports.
type DiscoveryType int

const (
	EnvironmentHit DiscoveryType = iota
	ApiDocHit
	SpaRouteHit
	JsEndpoint
	JsParameter
	ConfigPathHit
)

// Tag returns the output-file tag for a discovery type.
func (t DiscoveryType) Tag() string {
	switch t {
	case EnvironmentHit:
		return "DISCOVERY"
	case ApiDocHit:
		return "API-DOC"
	case SpaRouteHit:
		return "SPA-ROUTE"
	case JsEndpoint:
		return "JS-ENDPOINT"
	case JsParameter:
		return "PARAM"
	case ConfigPathHit:
		return "CONFIG-PATH"
	default:
		return "UNKNOWN"
	}
}

// Discovery is an immutable, typed finding worth reporting.
type Discovery struct {
	Type       DiscoveryType
	SourceURL  string // candidate URL the finding came from
	Value      string // the finding itself (URL, endpoint, route, parameter name)
	StatusCode int    // 0 when not applicable
	Detail     string // free text, e.g. a page title
}

// Key derives the deduplication key: variant tag plus the lowercase,
// whitespace-trimmed value. Two discoveries with equal keys are the
// same finding regardless of which fetch produced them.
func (d Discovery) Key() string {
	return d.Type.Tag() + "|" + strings.ToLower(strings.TrimSpace(d.Value))
}

// Line renders the human-readable output-file representation.
func (d Discovery) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Type.Tag(), d.Value)
	if d.StatusCode > 0 {
		fmt.Fprintf(&b, " [%d]", d.StatusCode)
	}
	if d.Detail != "" {
		b.WriteByte(' ')
		b.WriteString(d.Detail)
	}
	return b.String()
}
