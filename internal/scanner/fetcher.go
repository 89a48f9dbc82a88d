package scanner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"envprobe/internal/config"
	"envprobe/internal/errorwrapper"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
)

// Fetcher executes single HTTP GETs and maps every outcome, success or
// failure, onto exactly one FetchResult. Errors never escape it.
type Fetcher struct {
	client *http.Client
	cfg    config.ScannerConfig
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher over the given client.
func NewFetcher(client *http.Client, cfg config.ScannerConfig, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		logger: log.With().Str("component", "Fetcher").Logger(),
	}
}

// FetchCandidate fetches a candidate under its default scheme. When an
// https attempt dies on a connection or TLS failure the candidate is
// retried once over http before giving up; this materially changes
// yield on plain-http environment hosts.
func (f *Fetcher) FetchCandidate(ctx context.Context, cand models.Candidate) *models.FetchResult {
	res := f.FetchURL(ctx, cand.URL())
	if res.Kind == models.ErrNetwork && f.cfg.SchemeFallback && cand.Scheme == "https" && ctx.Err() == nil {
		f.logger.Debug().Str("host", cand.Host).Msg("https failed, retrying over http")
		return f.FetchURL(ctx, cand.URLWithScheme("http"))
	}
	return res
}

// FetchURL performs one GET. Response bodies are cut at the configured
// byte ceiling with the truncation recorded on the result.
func (f *Fetcher) FetchURL(ctx context.Context, rawURL string) *models.FetchResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &models.FetchResult{Kind: models.ErrNetwork, Err: err, Elapsed: time.Since(start)}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		kind := classifyFetchError(err)
		return &models.FetchResult{
			Kind:    kind,
			Err:     wrapTransportError(rawURL, kind, err),
			Elapsed: time.Since(start),
		}
	}
	defer resp.Body.Close()

	limit := f.cfg.MaxBodyBytes
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	truncated := int64(len(body)) > limit
	if truncated {
		body = body[:limit]
	}
	if readErr != nil {
		// A partial body is still worth classifying; record the read
		// failure only when nothing arrived at all.
		if len(body) == 0 {
			kind := classifyFetchError(readErr)
			return &models.FetchResult{
				Kind:    kind,
				Err:     wrapTransportError(rawURL, kind, readErr),
				Elapsed: time.Since(start),
			}
		}
		f.logger.Debug().Err(readErr).Str("url", rawURL).Msg("Body read ended early, keeping partial body")
	}

	return &models.FetchResult{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Truncated:  truncated,
		Elapsed:    time.Since(start),
		FinalURL:   resp.Request.URL.String(),
	}
}

// wrapTransportError packages a transport failure as a NetworkError
// carrying the taxonomy sentinel, so callers can match with errors.Is
// and logs show the failing URL.
func wrapTransportError(rawURL string, kind models.ErrorKind, err error) error {
	sentinel := errorwrapper.ErrNetworkFailure
	if kind == models.ErrTimeout {
		sentinel = errorwrapper.ErrTimeout
	}
	return errorwrapper.NewNetworkError(rawURL, kind.String(), errorwrapper.WrapSentinel(sentinel, err))
}

// classifyFetchError maps transport errors onto the error taxonomy.
func classifyFetchError(err error) models.ErrorKind {
	if errors.Is(err, errTooManyRedirects) {
		return models.ErrRedirectLoop
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return models.ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrTimeout
	}
	return models.ErrNetwork
}
