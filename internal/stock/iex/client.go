package iex

import (
	"net/http"
)

// DefaultBaseURL is the public IEX 1.0 API root.
const DefaultBaseURL = "https://api.iextrading.com/1.0"

// DefaultMaxBodyBytes caps a single response body, logo images included.
const DefaultMaxBodyBytes int64 = 4 << 20

// HTTPClient sends the GET requests. *httpx.Client and *http.Client both fit.
//
//go:generate mockgen -package=iex_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the list, quote and logo endpoints of an IEX-compatible
// host and downloads the logo images they reference.
type Client struct {
	baseURL      string
	httpClient   HTTPClient
	header       http.Header // added to every request
	maxBodyBytes int64
}

type Option func(*Client)

// WithBaseURL points the client at another IEX-compatible host, such as
// cmd/fakeiex. No trailing slash.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds headers to every request. Image downloads always ask for
// image/* whatever Accept is set here.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithMaxBodyBytes limits the size of a response body. Values <= 0 keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   http.DefaultClient,
		header:       http.Header{},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, option := range options {
		option(c)
	}
	return c
}
