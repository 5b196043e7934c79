package iex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"stocks/internal/stock"
)

var errBodyTooLarge = errors.New("response body too large")

func (c *Client) endpointURL(path string) string {
	return c.baseURL + path
}

// get performs a GET against rawURL and returns the body of a 200 response.
// Every failure is reported as a *stock.Error of kind NetworkError.
func (c *Client) get(ctx context.Context, op, symbol, rawURL string) ([]byte, error) {
	netErr := func(status int, err error) error {
		return &stock.Error{Kind: stock.NetworkError, Op: op, Symbol: symbol, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, netErr(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header = c.header.Clone()
	if op == stock.OpImage {
		// logo hosts may refuse a request that only accepts JSON
		req.Header.Set("Accept", "image/*")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, netErr(0, fmt.Errorf("performing request: %w", err))
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, netErr(res.StatusCode, fmt.Errorf("unknown symbol"))

	case http.StatusTooManyRequests:
		return nil, netErr(res.StatusCode, fmt.Errorf("rate limited"))

	default:
		return nil, netErr(res.StatusCode, fmt.Errorf("unexpected status code: %d", res.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, netErr(res.StatusCode, fmt.Errorf("reading body: %w", err))
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, netErr(res.StatusCode, errBodyTooLarge)
	}
	return body, nil
}

// getJSON performs a GET and decodes the body into generic JSON values.
func (c *Client) getJSON(ctx context.Context, op, symbol, rawURL string) (any, error) {
	body, err := c.get(ctx, op, symbol, rawURL)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &stock.Error{Kind: stock.DecodeError, Op: op, Symbol: symbol, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return v, nil
}

func symbolPath(symbol string) string {
	return url.PathEscape(symbol)
}
