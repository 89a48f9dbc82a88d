package config

// ScannerConfig defines configuration for the fetch scheduler.
type ScannerConfig struct {
	Concurrency        int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=1"`
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=1"`
	MaxRedirects       int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"gte=0"`
	MaxBodyBytes       int64  `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty" validate:"gte=1024"`
	SchemeFallback     bool   `json:"scheme_fallback" yaml:"scheme_fallback"`
	EnableHTTP2        bool   `json:"enable_http2" yaml:"enable_http2"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultScannerConfig creates default scanner configuration.
// Concurrency and timeout follow the documented contract: at most
// Concurrency requests in flight, 10s per request, bodies cut at 2 MiB.
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Concurrency:        80,
		TimeoutSeconds:     10,
		MaxRedirects:       5,
		MaxBodyBytes:       2 << 20,
		SchemeFallback:     true,
		EnableHTTP2:        true,
		InsecureSkipVerify: true,
		UserAgent:          "Mozilla/5.0 (compatible; envprobe/1.0)",
	}
}
