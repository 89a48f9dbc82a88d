package models

import "strings"

// Candidate is a concrete URL derived from a Target plus a generated
// subdomain/path permutation. Candidates are immutable once created.
type Candidate struct {
	Scheme     string // "https" by default; the fetcher may fall back to "http"
	Host       string
	Path       string // raw catalog entry, may contain SPA hash fragments
	SourceHost string // the Target host this candidate was derived from
	SourceIsIP bool
	Permuted   bool // Host is a generated environment permutation, not the original Target
}

// URL renders the candidate as a fetchable URL. Hash-route paths keep
// their fragment verbatim so SPA routes are probed as written.
func (c Candidate) URL() string {
	return c.URLWithScheme(c.Scheme)
}

// URLWithScheme renders the candidate URL under an explicit scheme,
// used by the fetcher for the https->http fallback. IPv6 hosts are
// bracketed.
func (c Candidate) URLWithScheme(scheme string) string {
	host := c.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if c.Path == "" || c.Path == "/" {
		return scheme + "://" + host
	}
	if strings.HasPrefix(c.Path, "#") {
		return scheme + "://" + host + "/" + c.Path
	}
	if strings.HasPrefix(c.Path, "/#") {
		return scheme + "://" + host + c.Path
	}
	return scheme + "://" + host + "/" + strings.TrimLeft(c.Path, "/")
}
