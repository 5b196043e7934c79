package stock

import (
	"context"
	"errors"
	"fmt"
)

// Company is one entry of the in-focus list.
type Company struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
}

// Quote is the latest price snapshot for a symbol.
type Quote struct {
	CompanyName string  `json:"companyName"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"latestPrice"`
	PriceChange float64 `json:"change"`
}

// Direction reports the sign of the price change.
func (q Quote) Direction() Direction {
	switch {
	case q.PriceChange > 0:
		return Positive
	case q.PriceChange < 0:
		return Negative
	default:
		return Neutral
	}
}

// LogoReference points at the logo image of a company.
type LogoReference struct {
	URL string `json:"url"`
}

// Logo is a downloaded logo image.
type Logo struct {
	Symbol      string
	URL         string
	Data        []byte
	ContentType string
}

// Direction is the display indicator for a price change.
type Direction int

const (
	Neutral Direction = iota
	Positive
	Negative
)

func (d Direction) String() string {
	switch d {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// Source is implemented by every upstream able to serve the three endpoints.
type Source interface {
	ListInFocus(ctx context.Context) ([]Company, error)
	Quote(ctx context.Context, symbol string) (Quote, error)
	Logo(ctx context.Context, symbol string) (LogoReference, error)
	Image(ctx context.Context, url string) ([]byte, error)
}

// Operations reported in Error.Op.
const (
	OpList  = "list"
	OpQuote = "quote"
	OpLogo  = "logo"
	OpImage = "image"
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	// NetworkError covers transport failures and non-200 responses.
	NetworkError ErrorKind = iota + 1
	// DecodeError covers bodies with missing or mistyped required fields.
	DecodeError
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case DecodeError:
		return "decode error"
	default:
		return "unknown error"
	}
}

// Error is returned by every Source call that fails.
type Error struct {
	Kind ErrorKind
	// Op is the endpoint that failed, one of the Op constants.
	Op     string
	Symbol string
	// Field is set on decode errors caused by a missing or mistyped field.
	Field string
	// StatusCode is set when the server answered with a non-200 status.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Symbol != "" {
		msg += " " + e.Symbol
	}
	msg += ": " + e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or NetworkError when err
// is not an *Error. Context errors count as network failures.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return NetworkError
}
