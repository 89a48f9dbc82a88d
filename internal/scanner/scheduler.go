package scanner

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"envprobe/internal/classifier"
	"envprobe/internal/config"
	"envprobe/internal/datastore"
	"envprobe/internal/errorwrapper"
	"envprobe/internal/expander"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
)

// Scheduler is the central orchestrator: it drains the candidate
// sequence through a bounded worker pool, hands every fetch result to
// the composed scanners as soon as it completes, and commits their
// discoveries through the dedup store. At most Concurrency requests
// are in flight at any instant; the blocking jobs channel is the
// backpressure that keeps the producer from outrunning the pool.
type Scheduler struct {
	cfg      config.ScannerConfig
	minerCfg config.MinerConfig
	fetcher  *Fetcher
	scanners []classifier.Scanner
	store    *datastore.DiscoveryStore
	stats    *models.RunStats
	logger   zerolog.Logger

	jsMu   sync.Mutex
	jsSeen map[string]struct{}

	fatalOnce sync.Once
	fatalErr  error
	abort     context.CancelFunc
}

// SchedulerBuilder assembles a Scheduler.
type SchedulerBuilder struct {
	cfg       config.ScannerConfig
	minerCfg  config.MinerConfig
	scanners  []classifier.Scanner
	store     *datastore.DiscoveryStore
	stats     *models.RunStats
	transport http.RoundTripper
	logger    zerolog.Logger
}

// NewSchedulerBuilder creates a new scheduler builder.
func NewSchedulerBuilder(log zerolog.Logger) *SchedulerBuilder {
	return &SchedulerBuilder{
		cfg:      config.NewDefaultScannerConfig(),
		minerCfg: config.NewDefaultMinerConfig(),
		logger:   log,
	}
}

// WithConfig sets the scanner configuration.
func (b *SchedulerBuilder) WithConfig(cfg config.ScannerConfig) *SchedulerBuilder {
	b.cfg = cfg
	return b
}

// WithMinerConfig sets the miner configuration consumed for the
// per-page JS fetch cap.
func (b *SchedulerBuilder) WithMinerConfig(cfg config.MinerConfig) *SchedulerBuilder {
	b.minerCfg = cfg
	return b
}

// WithScanners sets the composed scanner plugins invoked per fetch.
func (b *SchedulerBuilder) WithScanners(scanners ...classifier.Scanner) *SchedulerBuilder {
	b.scanners = scanners
	return b
}

// WithStore sets the dedup/result store.
func (b *SchedulerBuilder) WithStore(store *datastore.DiscoveryStore) *SchedulerBuilder {
	b.store = store
	return b
}

// WithStats sets the run statistics collector.
func (b *SchedulerBuilder) WithStats(stats *models.RunStats) *SchedulerBuilder {
	b.stats = stats
	return b
}

// WithTransport overrides the HTTP transport; used by tests to count
// in-flight requests.
func (b *SchedulerBuilder) WithTransport(rt http.RoundTripper) *SchedulerBuilder {
	b.transport = rt
	return b
}

// Build validates wiring and constructs the Scheduler.
func (b *SchedulerBuilder) Build() (*Scheduler, error) {
	if b.store == nil {
		return nil, errorwrapper.NewError("scheduler requires a discovery store")
	}
	if len(b.scanners) == 0 {
		return nil, errorwrapper.NewError("scheduler requires at least one scanner")
	}
	if b.stats == nil {
		b.stats = &models.RunStats{}
	}

	client := buildHTTPClient(b.cfg, b.transport, b.logger)
	return &Scheduler{
		cfg:      b.cfg,
		minerCfg: b.minerCfg,
		fetcher:  NewFetcher(client, b.cfg, b.logger),
		scanners: b.scanners,
		store:    b.store,
		stats:    b.stats,
		logger:   b.logger.With().Str("component", "Scheduler").Logger(),
		jsSeen:   make(map[string]struct{}),
	}, nil
}

// Run drains all candidates for all targets and returns once every
// in-flight fetch has completed. Cancelling ctx stops admission of new
// fetches and lets workers drain; discoveries already committed are
// on disk. The only error Run returns is a fatal output write failure.
func (s *Scheduler) Run(ctx context.Context, targets []models.Target, exp *expander.Expander) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.abort = cancel

	jobs := make(chan models.Candidate)
	var wg sync.WaitGroup

	for i := 0; i < s.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				s.process(runCtx, cand)
			}
		}()
	}

produce:
	for _, target := range targets {
		for _, cand := range exp.Candidates(target) {
			select {
			case jobs <- cand:
			case <-runCtx.Done():
				s.logger.Info().Msg("Stopping candidate admission")
				break produce
			}
		}
	}
	close(jobs)
	wg.Wait()

	s.logger.Info().
		Int64("requests", s.stats.Requests()).
		Int64("discoveries", s.stats.Discoveries()).
		Int64("errors", s.stats.Errors()).
		Msg("Run finished")
	return s.fatalErr
}

// process executes one candidate end to end inside a worker: fetch,
// classify, and a single hop into any JavaScript assets the page
// references. Each worker holds at most one request in flight, which
// is what keeps the global bound exact.
func (s *Scheduler) process(ctx context.Context, cand models.Candidate) {
	res := s.fetcher.FetchCandidate(ctx, cand)
	s.stats.AddRequest()

	if res.Failed() {
		s.stats.AddError()
		s.logger.Debug().
			Str("url", cand.URL()).
			Str("kind", res.Kind.String()).
			Err(res.Err).
			Msg("Fetch failed")
		return
	}

	s.dispatch(cand, res)

	if cand.SourceIsIP || !looksLikeHTML(res) {
		return
	}
	s.mineLinkedScripts(ctx, cand, res)
}

// mineLinkedScripts fetches JS assets referenced by an HTML page, one
// hop deep and capped per page, and pushes the results through the
// same scanner pipeline. Asset URLs are deduplicated run-wide.
func (s *Scheduler) mineLinkedScripts(ctx context.Context, cand models.Candidate, res *models.FetchResult) {
	sources := extractScriptSources(res.Body, cand.URL())
	if len(sources) > s.minerCfg.MaxJSFetchPerPage {
		sources = sources[:s.minerCfg.MaxJSFetchPerPage]
	}

	for _, jsURL := range sources {
		if ctx.Err() != nil {
			return
		}
		s.jsMu.Lock()
		_, dup := s.jsSeen[jsURL]
		if !dup {
			s.jsSeen[jsURL] = struct{}{}
		}
		s.jsMu.Unlock()
		if dup {
			continue
		}

		jsCand, ok := candidateForURL(jsURL, cand)
		if !ok {
			continue
		}
		jsRes := s.fetcher.FetchURL(ctx, jsURL)
		s.stats.AddRequest()
		if jsRes.Failed() {
			s.stats.AddError()
			continue
		}
		s.dispatch(jsCand, jsRes)
	}
}

// dispatch runs every composed scanner over a completed fetch and
// commits the resulting discoveries. A store write failure aborts the
// whole run.
func (s *Scheduler) dispatch(cand models.Candidate, res *models.FetchResult) {
	for _, sc := range s.scanners {
		for _, d := range sc.Scan(cand, res) {
			if _, err := s.store.Record(d); err != nil {
				s.fail(err)
				return
			}
		}
	}
}

// fail records the first fatal error and aborts candidate admission.
func (s *Scheduler) fail(err error) {
	s.fatalOnce.Do(func() {
		s.fatalErr = err
		s.logger.Error().Err(err).Msg("Fatal sink error, aborting run")
		if s.abort != nil {
			s.abort()
		}
	})
}

// candidateForURL derives a candidate for a linked asset URL so the
// scanner pipeline sees consistent metadata.
func candidateForURL(rawURL string, origin models.Candidate) (models.Candidate, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return models.Candidate{}, false
	}
	return models.Candidate{
		Scheme:     u.Scheme,
		Host:       u.Host,
		Path:       strings.TrimPrefix(u.Path, "/"),
		SourceHost: origin.SourceHost,
		SourceIsIP: origin.SourceIsIP,
		Permuted:   u.Host != origin.SourceHost,
	}, true
}
