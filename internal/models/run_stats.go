package models

import "sync/atomic"

// RunStats aggregates run-wide counters. Written by the scheduler and
// the result sink, read by reporting at the end of a run.
type RunStats struct {
	requests    atomic.Int64
	discoveries atomic.Int64
	errors      atomic.Int64
}

func (s *RunStats) AddRequest()   { s.requests.Add(1) }
func (s *RunStats) AddDiscovery() { s.discoveries.Add(1) }
func (s *RunStats) AddError()     { s.errors.Add(1) }

func (s *RunStats) Requests() int64    { return s.requests.Load() }
func (s *RunStats) Discoveries() int64 { return s.discoveries.Load() }
func (s *RunStats) Errors() int64      { return s.errors.Load() }
