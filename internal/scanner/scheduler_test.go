package scanner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"envprobe/internal/classifier"
	"envprobe/internal/config"
	"envprobe/internal/datastore"
	"envprobe/internal/errorwrapper"
	"envprobe/internal/expander"
	"envprobe/internal/jsminer"
	"envprobe/internal/logger"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport answers every request from an in-memory handler while
// tracking the peak number of simultaneous in-flight requests.
type stubTransport struct {
	mu       sync.Mutex
	inflight int
	peak     int
	requests []string
	handler  func(req *http.Request) (*http.Response, error)
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.inflight++
	if t.inflight > t.peak {
		t.peak = t.inflight
	}
	t.requests = append(t.requests, req.URL.String())
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.inflight--
		t.mu.Unlock()
	}()

	time.Sleep(time.Millisecond)
	return t.handler(req)
}

func (t *stubTransport) peakInflight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

func (t *stubTransport) requestedURLs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requests...)
}

func respond(req *http.Request, status int, ctype, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {ctype}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func newTestStore(t *testing.T, stats *models.RunStats) (*datastore.DiscoveryStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env-enum.txt")
	cfg := config.OutputConfig{OutputFile: path, BackupSuffix: ".bak"}
	store, err := datastore.NewDiscoveryStore(cfg, logger.ModeQuiet, stats, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func testScannerConfig(concurrency int) config.ScannerConfig {
	cfg := config.NewDefaultScannerConfig()
	cfg.Concurrency = concurrency
	cfg.SchemeFallback = false
	cfg.EnableHTTP2 = false
	return cfg
}

func smallExpander() *expander.Expander {
	return expander.NewExpander(config.ExpanderConfig{
		EnvPrefixes: []string{"dev"},
		CommonPaths: []string{"", "admin"},
	})
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func TestRunRespectsConcurrencyBoundAndScope(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return respond(req, 200, "text/html", "<html><head><title>Portal</title></head><body></body></html>"), nil
		},
	}
	stats := &models.RunStats{}
	store, _ := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(4)).
		WithScanners(classifier.NewRuleClassifier(zerolog.Nop())).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	require.NoError(t, sched.Run(context.Background(), targets, smallExpander()))

	// 4 permuted hosts crossed with 2 paths.
	assert.Equal(t, int64(8), stats.Requests())
	assert.LessOrEqual(t, transport.peakInflight(), 4)
	assert.GreaterOrEqual(t, transport.peakInflight(), 1)

	for _, u := range transport.requestedURLs() {
		assert.Contains(t, u, "example.com", "request %q escaped the target scope", u)
	}

	// 3 permuted hosts x 2 paths alive, plus /admin on all 4 hosts.
	assert.Equal(t, 10, store.Count())
}

func TestRunMinesLinkedScriptsOneHopDeep(t *testing.T) {
	pageBody := `<html><head><script src="/static/app.js"></script></head><body></body></html>`
	jsBody := `fetch("/api/v1/users?token=x");`

	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			if strings.HasSuffix(req.URL.Path, ".js") {
				return respond(req, 200, "application/javascript", jsBody), nil
			}
			return respond(req, 200, "text/html", pageBody), nil
		},
	}
	stats := &models.RunStats{}
	store, path := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(2)).
		WithScanners(
			classifier.NewRuleClassifier(zerolog.Nop()),
			jsminer.New(config.NewDefaultMinerConfig(), zerolog.Nop()),
		).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	exp := expander.NewExpander(config.ExpanderConfig{CommonPaths: []string{""}})
	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	require.NoError(t, sched.Run(context.Background(), targets, exp))

	// One page fetch plus one linked script fetch.
	assert.Equal(t, int64(2), stats.Requests())
	require.NoError(t, store.Close())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, data, "[JS-ENDPOINT] /api/v1/users?token=x")
	assert.Contains(t, data, "[PARAM] token")
}

func TestRunSkipsDuplicateScriptAssets(t *testing.T) {
	pageBody := `<html><script src="https://example.com/shared.js"></script></html>`

	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			if strings.HasSuffix(req.URL.Path, ".js") {
				return respond(req, 200, "application/javascript", `fetch("/api/ping");`), nil
			}
			return respond(req, 200, "text/html", pageBody), nil
		},
	}
	stats := &models.RunStats{}
	store, _ := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(1)).
		WithScanners(jsminer.New(config.NewDefaultMinerConfig(), zerolog.Nop())).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	// Two page candidates referencing the same script asset.
	exp := expander.NewExpander(config.ExpanderConfig{CommonPaths: []string{"", "admin"}})
	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	require.NoError(t, sched.Run(context.Background(), targets, exp))

	var jsFetches int
	for _, u := range transport.requestedURLs() {
		if strings.HasSuffix(u, "/shared.js") {
			jsFetches++
		}
	}
	assert.Equal(t, 1, jsFetches, "a script asset is fetched once per run")
}

func TestRunIgnoresCrossOriginScripts(t *testing.T) {
	pageBody := `<html><head>
		<script src="https://cdn.thirdparty.net/lib/app.js"></script>
		<script src="//tracker.analytics.io/t.js"></script>
		<script src="/static/own.js"></script>
	</head><body></body></html>`

	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			if strings.HasSuffix(req.URL.Path, ".js") {
				return respond(req, 200, "application/javascript", `fetch("/api/ping");`), nil
			}
			return respond(req, 200, "text/html", pageBody), nil
		},
	}
	stats := &models.RunStats{}
	store, path := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(1)).
		WithScanners(
			classifier.NewRuleClassifier(zerolog.Nop()),
			jsminer.New(config.NewDefaultMinerConfig(), zerolog.Nop()),
		).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	exp := expander.NewExpander(config.ExpanderConfig{CommonPaths: []string{""}})
	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	require.NoError(t, sched.Run(context.Background(), targets, exp))

	for _, u := range transport.requestedURLs() {
		assert.NotContains(t, u, "thirdparty", "cross-origin script was fetched: %s", u)
		assert.NotContains(t, u, "analytics", "cross-origin script was fetched: %s", u)
	}
	// Page plus the one same-origin script.
	assert.Equal(t, int64(2), stats.Requests())

	require.NoError(t, store.Close())
	data, err := readFile(path)
	require.NoError(t, err)
	assert.NotContains(t, data, "thirdparty")
	assert.NotContains(t, data, "analytics")
}

func TestRunIPTargetsSkipJSMining(t *testing.T) {
	pageBody := `<html><script src="/app.js"></script></html>`

	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return respond(req, 200, "text/html", pageBody), nil
		},
	}
	stats := &models.RunStats{}
	store, _ := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(1)).
		WithScanners(jsminer.New(config.NewDefaultMinerConfig(), zerolog.Nop())).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	exp := expander.NewExpander(config.ExpanderConfig{CommonPaths: []string{""}})
	targets := []models.Target{{Raw: "192.168.0.1", Host: "192.168.0.1", IsIP: true}}
	require.NoError(t, sched.Run(context.Background(), targets, exp))

	assert.Equal(t, int64(1), stats.Requests(), "no script fetch for IP-derived targets")
}

func TestRunReturnsErrorOnStoreFailure(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return respond(req, 200, "text/html", "<html></html>"), nil
		},
	}
	stats := &models.RunStats{}
	store, _ := newTestStore(t, stats)
	// A closed output stream makes the first commit fail.
	require.NoError(t, store.Close())

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(1)).
		WithScanners(classifier.NewRuleClassifier(zerolog.Nop())).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	err = sched.Run(context.Background(), targets, smallExpander())
	assert.Error(t, err)
}

func TestRunStopsAdmissionOnCancel(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return respond(req, 200, "text/html", "<html></html>"), nil
		},
	}
	stats := &models.RunStats{}
	store, _ := newTestStore(t, stats)

	sched, err := NewSchedulerBuilder(zerolog.Nop()).
		WithConfig(testScannerConfig(1)).
		WithScanners(classifier.NewRuleClassifier(zerolog.Nop())).
		WithStore(store).
		WithStats(stats).
		WithTransport(transport).
		Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	targets := []models.Target{{Raw: "example.com", Host: "example.com"}}
	require.NoError(t, sched.Run(ctx, targets, smallExpander()))
	assert.LessOrEqual(t, stats.Requests(), int64(8))
}

func TestFetcherSchemeFallback(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			if req.URL.Scheme == "https" {
				return nil, errors.New("connect: connection refused")
			}
			return respond(req, 200, "text/html", "<html></html>"), nil
		},
	}
	cfg := config.NewDefaultScannerConfig()
	client := &http.Client{Transport: transport}
	fetcher := NewFetcher(client, cfg, zerolog.Nop())

	cand := models.Candidate{Scheme: "https", Host: "dev.example.com", SourceHost: "example.com", Permuted: true}
	res := fetcher.FetchCandidate(context.Background(), cand)

	require.False(t, res.Failed(), "http fallback should have rescued the fetch: %v", res.Err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, []string{"https://dev.example.com", "http://dev.example.com"}, transport.requestedURLs())
}

func TestFetcherNoFallbackWhenDisabled(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connect: connection refused")
		},
	}
	cfg := config.NewDefaultScannerConfig()
	cfg.SchemeFallback = false
	fetcher := NewFetcher(&http.Client{Transport: transport}, cfg, zerolog.Nop())

	cand := models.Candidate{Scheme: "https", Host: "dev.example.com", SourceHost: "example.com"}
	res := fetcher.FetchCandidate(context.Background(), cand)

	assert.True(t, res.Failed())
	assert.Equal(t, models.ErrNetwork, res.Kind)
	assert.Len(t, transport.requestedURLs(), 1)

	var netErr *errorwrapper.NetworkError
	require.True(t, errors.As(res.Err, &netErr), "transport failures carry a NetworkError: %v", res.Err)
	assert.Equal(t, "https://dev.example.com", netErr.URL)
	assert.True(t, errors.Is(res.Err, errorwrapper.ErrNetworkFailure))
}

// timeoutErr mimics a net error that reports itself as a timeout.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFetcherTimeoutCarriesSentinel(t *testing.T) {
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return nil, timeoutErr{}
		},
	}
	cfg := config.NewDefaultScannerConfig()
	cfg.SchemeFallback = false
	fetcher := NewFetcher(&http.Client{Transport: transport}, cfg, zerolog.Nop())

	res := fetcher.FetchURL(context.Background(), "https://slow.example.com")

	assert.True(t, res.Failed())
	assert.Equal(t, models.ErrTimeout, res.Kind)
	assert.True(t, errors.Is(res.Err, errorwrapper.ErrTimeout))
	assert.False(t, errors.Is(res.Err, errorwrapper.ErrNetworkFailure))
}

func TestFetcherTruncatesOversizedBodies(t *testing.T) {
	big := strings.Repeat("A", 4096)
	transport := &stubTransport{
		handler: func(req *http.Request) (*http.Response, error) {
			return respond(req, 200, "text/plain", big), nil
		},
	}
	cfg := config.NewDefaultScannerConfig()
	cfg.MaxBodyBytes = 1024
	fetcher := NewFetcher(&http.Client{Transport: transport}, cfg, zerolog.Nop())

	res := fetcher.FetchURL(context.Background(), "https://example.com/big")
	require.False(t, res.Failed())
	assert.True(t, res.Truncated)
	assert.Len(t, res.Body, 1024)
}
