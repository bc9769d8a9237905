package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAmbiguous     = errors.New("ambiguous identifier")
	ErrConfiguration = errors.New("invalid configuration")
	ErrAllEndpoints  = errors.New("all endpoints unavailable")
)

// EndpointFailure records why a single candidate endpoint was skipped during
// the fallback loop.
type EndpointFailure struct {
	Endpoint string // source name plus URL
	Reason   error
}

func (f EndpointFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Endpoint, f.Reason)
}

// EndpointsError is returned when every candidate endpoint failed. It carries
// the per-candidate failure list for diagnostics.
type EndpointsError struct {
	Failures []EndpointFailure
}

func (e *EndpointsError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.String())
	}
	return fmt.Sprintf("all endpoints unavailable: [%s]", strings.Join(reasons, "; "))
}

func (e *EndpointsError) Is(target error) bool { return target == ErrAllEndpoints }

// NotFoundError is returned when an identifier token matched no market after
// every search pass. Windows holds the creation-time windows that were
// scanned; Limit is set instead when the search was bounded by record count.
type NotFoundError struct {
	Token   string
	Windows []time.Duration
	Limit   int
}

func (e *NotFoundError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("market %q not found in the last %d markets", e.Token, e.Limit)
	}
	windows := make([]string, 0, len(e.Windows))
	for _, w := range e.Windows {
		windows = append(windows, w.String())
	}
	return fmt.Sprintf("market %q not found (windows searched: %s)", e.Token, strings.Join(windows, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousError is returned when an identifier token matched more than one
// market within a single fetch result. The match list is surfaced instead of
// arbitrarily picking one.
type AmbiguousError struct {
	Token        string
	ConditionIDs []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("identifier %q matches %d markets: %s",
		e.Token, len(e.ConditionIDs), strings.Join(e.ConditionIDs, ", "))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }
