package models

import (
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies terminal fetch failures. All kinds are recovered
// locally by the scheduler and never propagated to the caller.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrNetwork
	ErrTimeout
	ErrRedirectLoop
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrTimeout:
		return "timeout"
	case ErrRedirectLoop:
		return "redirect_loop"
	default:
		return "none"
	}
}

// FetchResult is the outcome of attempting a Candidate. It is owned by
// the scheduler until handed to the classification pipeline.
type FetchResult struct {
	StatusCode int // 0 when the request failed before a response
	Headers    http.Header
	Body       []byte
	Truncated  bool // body was cut at the configured byte ceiling
	Elapsed    time.Duration
	FinalURL   string // URL after redirects; equals the request URL otherwise
	Kind       ErrorKind
	Err        error
}

// Failed reports whether the fetch terminated without a response.
func (r *FetchResult) Failed() bool {
	return r.Kind != ErrNone
}

// ContentType returns the response Content-Type header, lowercased.
func (r *FetchResult) ContentType() string {
	if r.Headers == nil {
		return ""
	}
	return strings.ToLower(r.Headers.Get("Content-Type"))
}
