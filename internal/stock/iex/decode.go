package iex

import (
	"errors"
	"fmt"

	"stocks/internal/stock"
)

// fieldError describes a required field that is missing or has the wrong type.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return fmt.Sprintf("%s: %v", e.field, e.err) }

// requireValue extracts a required, non-null value of type T from data.
func requireValue[T any](data map[string]any, key string) (T, error) {
	var zero T
	v, ok := data[key]
	if !ok {
		return zero, &fieldError{field: key, err: fmt.Errorf("missing")}
	}
	if v == nil {
		return zero, &fieldError{field: key, err: fmt.Errorf("null")}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &fieldError{field: key, err: fmt.Errorf("unexpected type: %T", v)}
	}
	return t, nil
}

// requireObject asserts that v is a JSON object.
func requireObject(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return obj, nil
}

// decodeError converts a decoding failure into a *stock.Error.
func decodeError(op, symbol string, err error) error {
	se := &stock.Error{Kind: stock.DecodeError, Op: op, Symbol: symbol, Err: err}
	var fe *fieldError
	if errors.As(err, &fe) {
		se.Field = fe.field
	}
	return se
}

func decodeCompany(v any) (stock.Company, error) {
	obj, err := requireObject(v)
	if err != nil {
		return stock.Company{}, err
	}
	symbol, err := requireValue[string](obj, "symbol")
	if err != nil {
		return stock.Company{}, err
	}
	name, err := requireValue[string](obj, "companyName")
	if err != nil {
		return stock.Company{}, err
	}
	return stock.Company{Symbol: symbol, CompanyName: name}, nil
}

func decodeQuote(v any) (stock.Quote, error) {
	obj, err := requireObject(v)
	if err != nil {
		return stock.Quote{}, err
	}
	name, err := requireValue[string](obj, "companyName")
	if err != nil {
		return stock.Quote{}, err
	}
	symbol, err := requireValue[string](obj, "symbol")
	if err != nil {
		return stock.Quote{}, err
	}
	price, err := requireValue[float64](obj, "latestPrice")
	if err != nil {
		return stock.Quote{}, err
	}
	change, err := requireValue[float64](obj, "change")
	if err != nil {
		return stock.Quote{}, err
	}
	return stock.Quote{CompanyName: name, Symbol: symbol, Price: price, PriceChange: change}, nil
}

func decodeLogo(v any) (stock.LogoReference, error) {
	obj, err := requireObject(v)
	if err != nil {
		return stock.LogoReference{}, err
	}
	u, err := requireValue[string](obj, "url")
	if err != nil {
		return stock.LogoReference{}, err
	}
	return stock.LogoReference{URL: u}, nil
}
