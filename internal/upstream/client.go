package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrUnavailable classifies a failed spot/stats fetch: transport error,
// non-success status, or a response missing the requested id.
var ErrUnavailable = errors.New("upstream unavailable")

// ErrChartUnavailable classifies a failed chart fetch under the same
// conditions. Callers treat it as "no chart data", never as fatal.
var ErrChartUnavailable = errors.New("chart unavailable")

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=upstream_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Limiter gates outbound calls; Wait blocks until a call is allowed or
// the context is canceled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client is a client for the market-data API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// limiter, when set, gates every outbound request.
	limiter Limiter
}

// ClientOption is a configuration option for the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLimiter sets a rate limiter gating each outbound request.
func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// NewClient creates a new market-data API client. key is optional; when
// set it is sent as the provider's API key query parameter.
func NewClient(key string, options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		client.query.Add("x_cg_demo_api_key", key)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// wait applies the configured limiter, if any.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
