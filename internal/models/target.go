package models

// Target represents a normalized host under enumeration.
// Host is lowercase with no scheme, port, userinfo or path.
type Target struct {
	Raw  string // the input line as provided by the user
	Host string // the host after normalization
	IsIP bool   // host is an IP literal; excluded from JS-mining-heavy paths
}
