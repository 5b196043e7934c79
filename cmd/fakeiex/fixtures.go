package main

import (
	"encoding/base64"

	"stocks/internal/stock"
)

// fixtures is the canned market served by the fake server. Symbols listed in
// broken answer every request with a 500.
type fixtures struct {
	inFocus []stock.Company
	quotes  map[string]stock.Quote
	logo    []byte
	broken  map[string]bool
}

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func defaultFixtures() fixtures {
	logo, err := base64.StdEncoding.DecodeString(pixelPNG)
	if err != nil {
		panic(err)
	}
	quotes := []stock.Quote{
		{Symbol: "USO", CompanyName: "United States Oil Fund", Price: 11.52, PriceChange: -0.18},
		{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: 174.55, PriceChange: 1.23},
		{Symbol: "MSFT", CompanyName: "Microsoft Corporation", Price: 411.22, PriceChange: 0},
		{Symbol: "TSLA", CompanyName: "Tesla Inc.", Price: 251.05, PriceChange: -3.4},
		{Symbol: "GE", CompanyName: "General Electric Company", Price: 160.1, PriceChange: 0.75},
	}
	f := fixtures{
		quotes: make(map[string]stock.Quote, len(quotes)),
		logo:   logo,
		broken: map[string]bool{"FAIL": true},
	}
	for _, q := range quotes {
		f.inFocus = append(f.inFocus, stock.Company{Symbol: q.Symbol, CompanyName: q.CompanyName})
		f.quotes[q.Symbol] = q
	}
	f.inFocus = append(f.inFocus, stock.Company{Symbol: "FAIL", CompanyName: "Always Failing Corp."})
	return f
}
