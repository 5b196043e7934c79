package iex

import (
	"context"
	"fmt"

	"stocks/internal/stock"
)

var _ stock.Source = (*Client)(nil)

// ListInFocus retrieves the "stocks in focus" market list.
// A single malformed record fails the whole list.
func (c *Client) ListInFocus(ctx context.Context) ([]stock.Company, error) {
	v, err := c.getJSON(ctx, stock.OpList, "", c.endpointURL("/stock/market/list/infocus"))
	if err != nil {
		return nil, err
	}

	// [
	//   {"symbol": "USO", "companyName": "United States Oil Fund", ...},
	//   ...
	// ]
	records, ok := v.([]any)
	if !ok {
		return nil, decodeError(stock.OpList, "", fmt.Errorf("expected array, got %T", v))
	}
	companies := make([]stock.Company, 0, len(records))
	for i, raw := range records {
		company, err := decodeCompany(raw)
		if err != nil {
			return nil, decodeError(stock.OpList, "", fmt.Errorf("record %d: %w", i, err))
		}
		companies = append(companies, company)
	}
	return companies, nil
}

// Quote retrieves the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (stock.Quote, error) {
	if symbol == "" {
		return stock.Quote{}, &stock.Error{Kind: stock.NetworkError, Op: stock.OpQuote, Err: fmt.Errorf("empty symbol")}
	}
	v, err := c.getJSON(ctx, stock.OpQuote, symbol, c.endpointURL("/stock/"+symbolPath(symbol)+"/quote"))
	if err != nil {
		return stock.Quote{}, err
	}

	// {"companyName": "...", "symbol": "USO", "latestPrice": 11.5, "change": -0.25, ...}
	q, err := decodeQuote(v)
	if err != nil {
		return stock.Quote{}, decodeError(stock.OpQuote, symbol, err)
	}
	return q, nil
}

// Logo retrieves the logo reference for symbol.
func (c *Client) Logo(ctx context.Context, symbol string) (stock.LogoReference, error) {
	if symbol == "" {
		return stock.LogoReference{}, &stock.Error{Kind: stock.NetworkError, Op: stock.OpLogo, Err: fmt.Errorf("empty symbol")}
	}
	v, err := c.getJSON(ctx, stock.OpLogo, symbol, c.endpointURL("/stock/"+symbolPath(symbol)+"/logo"))
	if err != nil {
		return stock.LogoReference{}, err
	}

	// {"url": "https://storage.googleapis.com/iex/api/logos/USO.png"}
	ref, err := decodeLogo(v)
	if err != nil {
		return stock.LogoReference{}, decodeError(stock.OpLogo, symbol, err)
	}
	return ref, nil
}

// Image downloads the raw bytes at rawURL, usually on another host than the API.
func (c *Client) Image(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := c.get(ctx, stock.OpImage, "", rawURL)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &stock.Error{Kind: stock.DecodeError, Op: stock.OpImage, Err: fmt.Errorf("empty image")}
	}
	return data, nil
}
