package commerce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"auditionsync/internal/services"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLimiter(rate.NewLimiter(rate.Inf, 1))}, opts...)
	client, err := NewClient(Config{BaseURL: baseURL, APIKey: "secret", UserAgent: "auditionsync/test"}, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestListOrdersFollowsCursor(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "auditionsync/test" {
			t.Fatalf("unexpected user agent %q", got)
		}
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"result":[{"customer_email":"a@x.com","created_on":"2026-03-01T10:00:00Z","line_items":[]}],
				"pagination":{"has_next_page":true,"next_page_cursor":"abc"}}`)
		case "abc":
			fmt.Fprint(w, `{"result":[{"customer_email":"b@x.com"}],"pagination":{"has_next_page":false,"next_page_cursor":null}}`)
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL+"/").ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if calls != 2 || len(got) != 2 {
		t.Fatalf("expected 2 calls and 2 orders, got %d calls %d orders", calls, len(got))
	}
	if got[1].Email() != "b@x.com" {
		t.Fatalf("unexpected second order %v", got[1])
	}
}

func TestListOrdersEmptyResultIsNonNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListOrdersClassifiesFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		marker  error
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			marker: services.ErrRateLimited,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, "boom")
			},
			marker: services.ErrUnexpected,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"result":[`)
			},
			marker: services.ErrMalformedResponse,
		},
		{
			name: "schema violation",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"result":"nope"}`)
			},
			marker: services.ErrMalformedResponse,
		},
		{
			name: "cursor missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"result":[],"pagination":{"has_next_page":true}}`)
			},
			marker: services.ErrMalformedResponse,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			_, err := newTestClient(t, server.URL).ListOrders(context.Background())
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestListOrdersRateLimitCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).ListOrders(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.RetryAfter != 12*time.Second {
		t.Fatalf("expected retry-after on status error, got %v", err)
	}
}

func TestListOrdersTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, server.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := client.ListOrders(context.Background())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestListOrdersConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).ListOrders(context.Background())
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected connection failure, got %v", err)
	}
}

func TestListOrdersRequiresAPIKey(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://example.invalid"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListOrders(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPingFetchesOnlyFirstPage(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"result":[],"pagination":{"has_next_page":true,"next_page_cursor":"abc"}}`)
	}))
	defer server.Close()

	if err := newTestClient(t, server.URL).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	err := &StatusError{StatusCode: 500, Body: strings.Repeat("x", 500)}
	if len(err.Error()) > 250 {
		t.Fatalf("expected truncated message, got %d chars", len(err.Error()))
	}
}
