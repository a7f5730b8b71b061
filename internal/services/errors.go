package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRateLimited       = errors.New("rate limited")
	ErrTimeout           = errors.New("timeout")
	ErrConnection        = errors.New("connection failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnexpected        = errors.New("unexpected failure")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// markers is checked in order; the first match names the failure.
var markers = []struct {
	err       error
	kind      string
	retryable bool
}{
	{ErrRateLimited, "rate_limited", true},
	{ErrTimeout, "timeout", true},
	{ErrConnection, "connection", true},
	{ErrMalformedResponse, "malformed_response", false},
	{ErrValidation, "validation", false},
	{ErrConfiguration, "configuration", false},
}

// Wrap tags err with marker and prefixes it with whichever of stage,
// operation and message are set, e.g.
// "connection failure: fetch: list orders: dial failed: <err>".
// A nil marker means ErrUnexpected.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrUnexpected
	}
	var parts []string
	for _, p := range []string{stage, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Retryable reports whether a failure is likely to clear on a later run
// without operator action.
func Retryable(err error) bool {
	for _, m := range markers {
		if errors.Is(err, m.err) {
			return m.retryable
		}
	}
	return false
}

// Kind names the marker carried by err for ledgers and metrics labels.
// Errors without a known marker are "unexpected"; nil is "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range markers {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return "unexpected"
}
