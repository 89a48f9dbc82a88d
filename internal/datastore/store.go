package datastore

import (
	"fmt"
	"os"
	"sync"

	"envprobe/internal/config"
	"envprobe/internal/errorwrapper"
	"envprobe/internal/logger"
	"envprobe/internal/models"

	"github.com/rs/zerolog"
)

// DiscoveryStore is the single serialization point of a run: a
// mutex-guarded dedup set plus the append-only output stream. It is
// constructed at run start and torn down at run end; ordering in the
// output file is first-committed across all concurrent producers.
type DiscoveryStore struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	file   *os.File
	path   string
	echo   bool
	stats  *models.RunStats
	logger zerolog.Logger
}

// NewDiscoveryStore rotates any pre-existing output file to the backup
// path (overwriting a prior backup) and opens a fresh output stream.
// The rotation happens before the first write so a failed run never
// destroys the previous run's completed output.
func NewDiscoveryStore(cfg config.OutputConfig, mode string, stats *models.RunStats, log zerolog.Logger) (*DiscoveryStore, error) {
	path := cfg.OutputFile
	backup := path + cfg.BackupSuffix

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, backup); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to rotate previous output file")
		}
		log.Debug().Str("backup", backup).Msg("Rotated previous output file")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create output file")
	}

	return &DiscoveryStore{
		seen:   make(map[string]struct{}),
		file:   file,
		path:   path,
		echo:   logger.EchoDiscoveries(mode),
		stats:  stats,
		logger: log.With().Str("component", "DiscoveryStore").Logger(),
	}, nil
}

// Record checks-and-inserts the discovery's dedup key atomically and
// appends newly seen discoveries to the output stream. It returns
// whether the discovery was newly recorded. Write failures are fatal
// to the run: silent data loss is worse than stopping.
func (ds *DiscoveryStore) Record(d models.Discovery) (bool, error) {
	key := d.Key()

	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, dup := ds.seen[key]; dup {
		return false, nil
	}
	ds.seen[key] = struct{}{}

	line := d.Line()
	if _, err := ds.file.WriteString(line + "\n"); err != nil {
		return false, errorwrapper.WrapError(err, "failed to write discovery to output file")
	}

	ds.stats.AddDiscovery()
	if ds.echo {
		fmt.Println(line)
	}
	return true, nil
}

// Count returns the number of unique discoveries committed so far.
func (ds *DiscoveryStore) Count() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.seen)
}

// Path returns the output file location.
func (ds *DiscoveryStore) Path() string {
	return ds.path
}

// Close flushes and closes the output stream.
func (ds *DiscoveryStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if err := ds.file.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to close output file")
	}
	return nil
}
