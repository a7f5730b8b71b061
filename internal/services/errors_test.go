package services_test

import (
	"errors"
	"strings"
	"testing"

	"auditionsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConnection, "fetch", "list orders", "dial failed", base)
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fetch", "list orders", "dial failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUnexpected) {
		t.Fatalf("expected unexpected marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestRetryableAndKind(t *testing.T) {
	cases := []struct {
		marker    error
		retryable bool
		kind      string
	}{
		{services.ErrRateLimited, true, "rate_limited"},
		{services.ErrTimeout, true, "timeout"},
		{services.ErrConnection, true, "connection"},
		{services.ErrMalformedResponse, false, "malformed_response"},
		{services.ErrValidation, false, "validation"},
		{services.ErrConfiguration, false, "configuration"},
		{services.ErrUnexpected, false, "unexpected"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "stage", "op", "msg", nil)
		if got := services.Retryable(err); got != tc.retryable {
			t.Fatalf("Retryable(%v) = %v", tc.marker, got)
		}
		if got := services.Kind(err); got != tc.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tc.marker, got, tc.kind)
		}
	}
	if services.Retryable(nil) || services.Kind(nil) != "" {
		t.Fatal("nil error must not classify")
	}
}
