package classifier

import "envprobe/internal/models"

// Scanner is the capability interface every response inspector
// implements. Implementations must be pure functions of their inputs:
// no network access and no mutable shared state, so the scheduler can
// invoke them from any worker without coordination. Third-party
// scanners register by being composed into the scheduler's scanner
// list, not by editing the built-in rules.
type Scanner interface {
	Name() string
	Scan(cand models.Candidate, res *models.FetchResult) []models.Discovery
}
