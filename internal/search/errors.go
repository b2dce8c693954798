package search

import (
	"errors"
	"fmt"
)

// ErrExhaustedAttempts indicates the sampler's retry budget ran out without
// a single non-empty result.
var ErrExhaustedAttempts = errors.New("exceeded request limit")

// ExhaustedAttemptsError carries the context of an exhausted sampler.
type ExhaustedAttemptsError struct {
	Genre    string
	Attempts int
}

func (e *ExhaustedAttemptsError) Error() string {
	return fmt.Sprintf("exceeded request limit: no tracks returned for genre %q after %d attempts", e.Genre, e.Attempts)
}

func (e *ExhaustedAttemptsError) Is(target error) bool {
	return target == ErrExhaustedAttempts
}
