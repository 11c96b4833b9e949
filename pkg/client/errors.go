package client

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrUpstreamStatus      = errors.New("upstream returned non-2xx status")
	ErrUpstreamMalformed   = errors.New("upstream returned malformed payload")
)

// UpstreamError describes one failed upstream call. It matches one of the
// ErrUpstream* sentinels with errors.Is.
type UpstreamError struct {
	Source     string
	URL        string
	StatusCode int
	Kind       error
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %v: status %d", e.Source, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Malformed wraps a decode failure for a payload that arrived with a 2xx status.
func Malformed(source, url string, err error) error {
	return &UpstreamError{Source: source, URL: url, Kind: ErrUpstreamMalformed, Err: err}
}
