// Package quoteclient turns picker selections into quote and logo requests
// and reports the outcome to a UI listener.
//
// Every fetch runs on its own goroutine. Completions are never delivered
// from that goroutine directly: they are handed to the Dispatcher, which must
// run them on the UI execution context. Fetches are neither cancelled nor
// de-duplicated, so overlapping refresh cycles resolve as
// last-completed-wins on the listener side.
package quoteclient

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"stocks/internal/directory"
	"stocks/internal/reachability"
	"stocks/internal/stock"
)

// DefaultFallbackSymbol is used while the directory is still empty.
const DefaultFallbackSymbol = "USO"

// Listener receives the results of fetches. Its methods are only called
// through the Dispatcher.
type Listener interface {
	OnDirectoryUpdated()
	OnQuoteReady(q stock.Quote)
	OnLogoReady(l stock.Logo)
	// OnError reports a failed fetch. op is stock.OpList, stock.OpQuote or
	// stock.OpLogo; a failed image download is reported as stock.OpLogo.
	OnError(op string, kind stock.ErrorKind, message string)
}

// Dispatcher runs f on the UI execution context.
type Dispatcher interface {
	Dispatch(f func())
}

// DispatcherFunc adapts a function to a Dispatcher.
type DispatcherFunc func(f func())

func (d DispatcherFunc) Dispatch(f func()) { d(f) }

// Immediate runs completions on the fetching goroutine. Only for listeners
// that are safe for concurrent use, such as CLIs and tests.
var Immediate = DispatcherFunc(func(f func()) { f() })

// Selector exposes the row currently selected in the picker.
type Selector interface {
	SelectedRow() int
}

// SelectorFunc adapts a function to a Selector.
type SelectorFunc func() int

func (s SelectorFunc) SelectedRow() int { return s() }

// Client is the quote client.
type Client struct {
	source   stock.Source
	dir      *directory.Directory
	listener Listener

	dispatcher Dispatcher
	selector   Selector
	probe      reachability.Probe
	fallback   string
	logger     *slog.Logger

	inflight sync.WaitGroup
}

// Option is a configuration option for the Client.
type Option func(*Client)

// WithDispatcher sets the UI execution context. Defaults to Immediate.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Client) {
		c.dispatcher = d
	}
}

// WithSelector sets the picker selection used by RefreshQuote.
func WithSelector(s Selector) Option {
	return func(c *Client) {
		c.selector = s
	}
}

// WithProbe sets the reachability probe consulted when a failure is reported.
func WithProbe(p reachability.Probe) Option {
	return func(c *Client) {
		c.probe = p
	}
}

// WithFallbackSymbol overrides DefaultFallbackSymbol.
func WithFallbackSymbol(symbol string) Option {
	return func(c *Client) {
		if symbol != "" {
			c.fallback = symbol
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client. The directory is owned by the caller and is only
// written by the list fetch.
func New(source stock.Source, dir *directory.Directory, listener Listener, options ...Option) *Client {
	var c = &Client{
		source:     source,
		dir:        dir,
		listener:   listener,
		dispatcher: Immediate,
		selector:   SelectorFunc(func() int { return 0 }),
		probe:      reachability.Static(true),
		fallback:   DefaultFallbackSymbol,
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Start issues the list fetch and the first refresh together. On a cold
// start the refresh resolves to the fallback symbol.
func (c *Client) Start(ctx context.Context) {
	c.logger.Info("starting", "fallback", c.fallback)
	c.FetchCompanyList(ctx)
	c.RefreshQuote(ctx, "")
}

// Retry re-issues the list fetch and a refresh of the current selection,
// whichever request failed.
func (c *Client) Retry(ctx context.Context) {
	c.logger.Info("retry requested")
	c.FetchCompanyList(ctx)
	c.RefreshQuote(ctx, "")
}

// Wait blocks until every issued fetch has handed its completion to the
// Dispatcher.
func (c *Client) Wait() { c.inflight.Wait() }

// ResolveSymbol picks the symbol a refresh is issued for: an explicit symbol
// first, then the selected picker row, then the fallback symbol.
func (c *Client) ResolveSymbol(symbol string) string {
	if symbol != "" {
		return symbol
	}
	if c.dir.Len() == 0 {
		return c.fallback
	}
	if s, ok := c.dir.SymbolAt(c.selector.SelectedRow()); ok && s != "" {
		return s
	}
	return c.fallback
}

// RefreshQuote starts a refresh cycle: the logo and the quote of the resolved
// symbol are fetched independently. An empty symbol means none was given.
// It returns the resolved symbol without waiting for the fetches.
func (c *Client) RefreshQuote(ctx context.Context, symbol string) string {
	resolved := c.ResolveSymbol(symbol)
	c.logger.Debug("refresh", "requested", symbol, "symbol", resolved)
	c.FetchLogo(ctx, resolved)
	c.FetchQuote(ctx, resolved)
	return resolved
}

// FetchCompanyList fetches the in-focus list and merges it into the directory.
func (c *Client) FetchCompanyList(ctx context.Context) {
	c.goFetch(func() {
		companies, err := c.source.ListInFocus(ctx)
		if err != nil {
			c.report(ctx, stock.OpList, err)
			return
		}
		added := c.dir.Merge(companies)
		c.logger.Info("directory updated", "records", len(companies), "added", added, "rows", c.dir.Len())
		c.dispatcher.Dispatch(c.listener.OnDirectoryUpdated)
	})
}

// FetchQuote fetches the quote of symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) {
	c.goFetch(func() {
		q, err := c.source.Quote(ctx, symbol)
		if err != nil {
			c.report(ctx, stock.OpQuote, err)
			return
		}
		c.logger.Debug("quote ready", "symbol", q.Symbol, "price", q.Price, "change", q.PriceChange)
		c.dispatcher.Dispatch(func() { c.listener.OnQuoteReady(q) })
	})
}

// FetchLogo fetches the logo reference of symbol, then the image it points at.
func (c *Client) FetchLogo(ctx context.Context, symbol string) {
	c.goFetch(func() {
		ref, err := c.source.Logo(ctx, symbol)
		if err != nil {
			c.report(ctx, stock.OpLogo, err)
			return
		}
		data, err := c.source.Image(ctx, ref.URL)
		if err != nil {
			c.report(ctx, stock.OpLogo, err)
			return
		}
		logo := stock.Logo{
			Symbol:      symbol,
			URL:         ref.URL,
			Data:        data,
			ContentType: mimetype.Detect(data).String(),
		}
		c.logger.Debug("logo ready", "symbol", symbol, "bytes", len(data), "type", logo.ContentType)
		c.dispatcher.Dispatch(func() { c.listener.OnLogoReady(logo) })
	})
}

func (c *Client) goFetch(fn func()) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn()
	}()
}

// report logs err and delivers it to the listener as a user-facing message.
// The probe gets a context detached from the failed fetch, which may well
// have been cancelled or timed out.
func (c *Client) report(ctx context.Context, op string, err error) {
	kind := stock.KindOf(err)
	msg := Message(kind, err, c.probe.Reachable(context.WithoutCancel(ctx)))
	c.logger.Warn("fetch failed", "op", op, "kind", kind.String(), "err", err)
	c.dispatcher.Dispatch(func() { c.listener.OnError(op, kind, msg) })
}
