package scanner

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"envprobe/internal/config"
	"envprobe/internal/errorwrapper"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// errTooManyRedirects is the sentinel the redirect policy returns once
// the hop limit is exceeded; the fetcher maps it to ErrRedirectLoop.
var errTooManyRedirects = errorwrapper.NewError("too many redirects")

// buildHTTPClient creates the shared fetch client: per-request timeout,
// bounded redirect following and recon-friendly TLS settings. A nil
// transport means the default one; tests inject an instrumented
// RoundTripper to observe in-flight counts.
func buildHTTPClient(cfg config.ScannerConfig, transport http.RoundTripper, log zerolog.Logger) *http.Client {
	if transport == nil {
		tr := &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		}
		if cfg.EnableHTTP2 {
			if err := http2.ConfigureTransport(tr); err != nil {
				log.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
			}
		}
		transport = tr
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}
