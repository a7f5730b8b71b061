package commerce

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"auditionsync/internal/orders"
	"auditionsync/internal/services"
)

//go:embed envelope.schema.json
var envelopeSchema string

const (
	envelopeSchemaURL     = "https://auditionsync.local/commerce/envelope.schema.json"
	defaultHTTPTimeout    = 30 * time.Second
	defaultRequestsPerSec = 2
	maxPages              = 1000
	component             = "commerce"
)

// Config captures the runtime settings required to talk to the orders API.
type Config struct {
	BaseURL           string
	APIKey            string
	UserAgent         string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Client lists orders from the commerce API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	schema     *jsonschema.Schema
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the page pacing limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// NewClient constructs a commerce client and compiles the envelope schema.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSec
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(envelopeSchemaURL, strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("commerce schema load: %w", err)
	}
	schema, err := compiler.Compile(envelopeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("commerce schema compile: %w", err)
	}

	client := &Client{
		cfg: Config{
			BaseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:            strings.TrimSpace(cfg.APIKey),
			UserAgent:         strings.TrimSpace(cfg.UserAgent),
			TimeoutSeconds:    cfg.TimeoutSeconds,
			RequestsPerSecond: rps,
		},
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		schema:     schema,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new client", "base url required", nil)
	}
	return client, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("http %d (retry after %s): %s", e.StatusCode, e.RetryAfter, body)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

type page struct {
	Result     []orders.Order `json:"result"`
	Pagination *struct {
		HasNextPage    bool    `json:"has_next_page"`
		NextPageCursor *string `json:"next_page_cursor"`
	} `json:"pagination"`
}

// ListOrders fetches every page of orders. The returned slice is never nil
// on success.
func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "list orders", "api key required", nil)
	}

	all := make([]orders.Order, 0)
	cursor := ""
	seen := map[string]struct{}{}
	for pageNum := 1; ; pageNum++ {
		if pageNum > maxPages {
			return nil, services.Wrap(services.ErrMalformedResponse, component, "list orders",
				fmt.Sprintf("pagination did not end after %d pages", maxPages), nil)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(err, "wait for rate limiter")
		}
		p, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Result...)

		if p.Pagination == nil || !p.Pagination.HasNextPage {
			return all, nil
		}
		next := ""
		if p.Pagination.NextPageCursor != nil {
			next = strings.TrimSpace(*p.Pagination.NextPageCursor)
		}
		if next == "" {
			return nil, services.Wrap(services.ErrMalformedResponse, component, "list orders",
				"has_next_page set without next_page_cursor", nil)
		}
		if _, dup := seen[next]; dup {
			return nil, services.Wrap(services.ErrMalformedResponse, component, "list orders",
				fmt.Sprintf("cursor %q repeated", next), nil)
		}
		seen[next] = struct{}{}
		cursor = next
	}
}

// Ping fetches the first page of orders to confirm the endpoint and key work.
func (c *Client) Ping(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, component, "ping", "api key required", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return classifyTransport(err, "wait for rate limiter")
	}
	_, err := c.fetchPage(ctx, "")
	return err
}

func (c *Client) fetchPage(ctx context.Context, cursor string) (page, error) {
	var p page
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "orders")
	if err != nil {
		return p, services.Wrap(services.ErrConfiguration, component, "build url", "", err)
	}
	if cursor != "" {
		endpoint += "?" + url.Values{"cursor": []string{cursor}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return p, services.Wrap(services.ErrUnexpected, component, "new request", "", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return p, classifyTransport(err, fmt.Sprintf("GET orders (timeout=%s)", c.httpClient.Timeout))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p, classifyTransport(err, "read body")
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return p, services.Wrap(services.ErrRateLimited, component, "GET orders", "", statusErr)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return p, services.Wrap(services.ErrTimeout, component, "GET orders", "", statusErr)
		default:
			return p, services.Wrap(services.ErrUnexpected, component, "GET orders", "", statusErr)
		}
	}

	var generic any
	if err := json.Unmarshal(body, &generic); err != nil {
		return p, services.Wrap(services.ErrMalformedResponse, component, "decode page", "invalid json", err)
	}
	if err := c.schema.Validate(generic); err != nil {
		return p, services.Wrap(services.ErrMalformedResponse, component, "decode page", "unexpected envelope", err)
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return p, services.Wrap(services.ErrMalformedResponse, component, "decode page", "", err)
	}
	return p, nil
}

func classifyTransport(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, component, operation, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, component, operation, "", err)
	}
	if errors.Is(err, context.Canceled) {
		return services.Wrap(services.ErrUnexpected, component, operation, "canceled", err)
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr) {
		return services.Wrap(services.ErrConnection, component, operation, "", err)
	}
	return services.Wrap(services.ErrUnexpected, component, operation, "", err)
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
