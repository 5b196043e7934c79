package quoteclient_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stocks/internal/directory"
	"stocks/internal/quoteclient"
	"stocks/internal/reachability"
	"stocks/internal/stock"
	"stocks/internal/stock/iex"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fakeSource serves canned answers and records requested symbols.
type fakeSource struct {
	mu       sync.Mutex
	list     func() ([]stock.Company, error)
	quote    func(symbol string) (stock.Quote, error)
	logo     func(symbol string) (stock.LogoReference, error)
	image    func(url string) ([]byte, error)
	requests []string
}

func (f *fakeSource) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, s)
}

func (f *fakeSource) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeSource) ListInFocus(context.Context) ([]stock.Company, error) {
	f.record("list")
	return f.list()
}

func (f *fakeSource) Quote(_ context.Context, symbol string) (stock.Quote, error) {
	f.record("quote:" + symbol)
	return f.quote(symbol)
}

func (f *fakeSource) Logo(_ context.Context, symbol string) (stock.LogoReference, error) {
	f.record("logo:" + symbol)
	return f.logo(symbol)
}

func (f *fakeSource) Image(_ context.Context, url string) ([]byte, error) {
	f.record("image:" + url)
	return f.image(url)
}

func okSource() *fakeSource {
	return &fakeSource{
		list: func() ([]stock.Company, error) {
			return []stock.Company{
				{Symbol: "USO", CompanyName: "United States Oil Fund"},
				{Symbol: "AAPL", CompanyName: "Apple Inc."},
			}, nil
		},
		quote: func(symbol string) (stock.Quote, error) {
			return stock.Quote{CompanyName: "Company " + symbol, Symbol: symbol, Price: 10, PriceChange: 1}, nil
		},
		logo: func(symbol string) (stock.LogoReference, error) {
			return stock.LogoReference{URL: "https://img.test/" + symbol + ".png"}, nil
		},
		image: func(string) ([]byte, error) { return pngBytes, nil },
	}
}

type errorEvent struct {
	op      string
	kind    stock.ErrorKind
	message string
}

// recorder is a Listener safe for the Immediate dispatcher.
type recorder struct {
	mu      sync.Mutex
	updated int
	quotes  []stock.Quote
	logos   []stock.Logo
	errs    []errorEvent
}

func (r *recorder) OnDirectoryUpdated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated++
}

func (r *recorder) OnQuoteReady(q stock.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes = append(r.quotes, q)
}

func (r *recorder) OnLogoReady(l stock.Logo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logos = append(r.logos, l)
}

func (r *recorder) OnError(op string, kind stock.ErrorKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, errorEvent{op, kind, message})
}

func TestRefreshQuote_ColdStartUsesFallback(t *testing.T) {
	// Arrange: empty directory, quote endpoint answers for USO
	src := okSource()
	src.quote = func(symbol string) (stock.Quote, error) {
		return stock.Quote{CompanyName: "United States Oil Fund", Symbol: symbol, Price: 11.5, PriceChange: -0.25}, nil
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec)

	// Act: refresh without a symbol
	resolved := c.RefreshQuote(t.Context(), "")
	c.Wait()

	// Assert: fallback symbol, exact values, negative indicator
	require.Equal(t, "USO", resolved)
	require.ElementsMatch(t, []string{"logo:USO", "image:https://img.test/USO.png", "quote:USO"}, src.Requests())
	require.Len(t, rec.quotes, 1)
	require.Equal(t, stock.Quote{CompanyName: "United States Oil Fund", Symbol: "USO", Price: 11.5, PriceChange: -0.25}, rec.quotes[0])
	require.Equal(t, stock.Negative, rec.quotes[0].Direction())
	require.Len(t, rec.logos, 1)
	require.Equal(t, "image/png", rec.logos[0].ContentType)
	require.Empty(t, rec.errs)
}

func TestRefreshQuote_Resolution(t *testing.T) {
	dir := directory.New()
	dir.Merge([]stock.Company{
		{Symbol: "USO", CompanyName: "United States Oil Fund"},
		{Symbol: "AAPL", CompanyName: "Apple Inc."},
	})

	tests := []struct {
		name     string
		dir      *directory.Directory
		row      int
		symbol   string
		fallback string
		want     string
	}{
		{name: "empty directory", dir: directory.New(), want: "USO"},
		{name: "empty directory custom fallback", dir: directory.New(), fallback: "SPY", want: "SPY"},
		{name: "selected row", dir: dir, row: 1, want: "AAPL"},
		{name: "first row", dir: dir, row: 0, want: "USO"},
		{name: "row out of range", dir: dir, row: 7, want: "USO"},
		{name: "explicit symbol wins", dir: dir, row: 1, symbol: "MSFT", want: "MSFT"},
		{name: "explicit symbol on empty directory", dir: directory.New(), symbol: "GE", want: "GE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := quoteclient.New(okSource(), tt.dir, &recorder{},
				quoteclient.WithSelector(quoteclient.SelectorFunc(func() int { return tt.row })),
				quoteclient.WithFallbackSymbol(tt.fallback),
			)
			require.Equal(t, tt.want, c.ResolveSymbol(tt.symbol))
		})
	}
}

func TestFetchCompanyList_MergesAndNotifies(t *testing.T) {
	// Arrange
	rec := &recorder{}
	dir := directory.New()
	c := quoteclient.New(okSource(), dir, rec)

	// Act
	c.FetchCompanyList(t.Context())
	c.Wait()

	// Assert: N records, N rows, one notification
	require.Equal(t, 2, dir.Len())
	require.Equal(t, 1, rec.updated)
	require.Empty(t, rec.errs)
}

func TestFetchCompanyList_DecodeErrorLeavesDirectoryUnchanged(t *testing.T) {
	// Arrange: directory already has one row
	dir := directory.New()
	dir.Merge([]stock.Company{{Symbol: "GE", CompanyName: "General Electric"}})
	src := okSource()
	src.list = func() ([]stock.Company, error) {
		return nil, &stock.Error{Kind: stock.DecodeError, Op: "list", Field: "symbol", Err: fmt.Errorf("missing")}
	}
	rec := &recorder{}
	c := quoteclient.New(src, dir, rec)

	// Act
	c.FetchCompanyList(t.Context())
	c.Wait()

	// Assert
	require.Equal(t, []string{"GE"}, dir.Symbols())
	require.Zero(t, rec.updated)
	require.Len(t, rec.errs, 1)
	require.Equal(t, stock.OpList, rec.errs[0].op)
	require.Equal(t, stock.DecodeError, rec.errs[0].kind)
	require.Contains(t, rec.errs[0].message, quoteclient.MsgBadJSON)
}

func TestFetchQuote_DecodeErrorFiresOnce(t *testing.T) {
	// Arrange
	src := okSource()
	src.quote = func(symbol string) (stock.Quote, error) {
		return stock.Quote{}, &stock.Error{Kind: stock.DecodeError, Op: "quote", Symbol: symbol, Field: "change", Err: fmt.Errorf("missing")}
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec)

	// Act
	c.FetchQuote(t.Context(), "USO")
	c.Wait()

	// Assert
	require.Empty(t, rec.quotes)
	require.Equal(t, []errorEvent{{op: stock.OpQuote, kind: stock.DecodeError, message: quoteclient.MsgBadJSON + ` quote USO: decode error (field "change"): missing`}}, rec.errs)
}

func TestFetchLogo_ImageFailureDoesNotBlockQuote(t *testing.T) {
	// Arrange: the image download fails
	src := okSource()
	src.image = func(string) ([]byte, error) {
		return nil, &stock.Error{Kind: stock.NetworkError, Op: "image", StatusCode: http.StatusForbidden, Err: fmt.Errorf("unexpected status code: 403")}
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec)

	// Act
	c.RefreshQuote(t.Context(), "USO")
	c.Wait()

	// Assert: quote delivered, logo reported once
	require.Len(t, rec.quotes, 1)
	require.Empty(t, rec.logos)
	require.Len(t, rec.errs, 1)
	require.Equal(t, stock.OpLogo, rec.errs[0].op)
	require.Equal(t, stock.NetworkError, rec.errs[0].kind)
}

func TestFetchLogo_MetadataFailureSkipsImage(t *testing.T) {
	src := okSource()
	src.logo = func(symbol string) (stock.LogoReference, error) {
		return stock.LogoReference{}, &stock.Error{Kind: stock.DecodeError, Op: "logo", Symbol: symbol, Field: "url"}
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec)

	c.FetchLogo(t.Context(), "USO")
	c.Wait()

	require.Equal(t, []string{"logo:USO"}, src.Requests())
	require.Empty(t, rec.logos)
	require.Len(t, rec.errs, 1)
	require.Equal(t, stock.DecodeError, rec.errs[0].kind)
}

func TestReport_UnreachableNetworkPhrasing(t *testing.T) {
	src := okSource()
	src.quote = func(string) (stock.Quote, error) {
		return stock.Quote{}, &stock.Error{Kind: stock.NetworkError, Op: "quote", Err: fmt.Errorf("performing request: dial tcp: no route to host")}
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec, quoteclient.WithProbe(reachability.Static(false)))

	c.FetchQuote(t.Context(), "USO")
	c.Wait()

	require.Equal(t, []errorEvent{{op: stock.OpQuote, kind: stock.NetworkError, message: quoteclient.MsgNoInternet}}, rec.errs)
}

func TestReport_TimedOutFetchOnReachableNetwork(t *testing.T) {
	// Arrange: an upstream slower than the fetch deadline
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	// Arrange: a probe address that accepts connections
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	rec := &recorder{}
	c := quoteclient.New(
		iex.NewClient(iex.WithBaseURL(srv.URL), iex.WithHTTPClient(srv.Client())),
		directory.New(), rec,
		quoteclient.WithProbe(reachability.NewDialProbe(ln.Addr().String(), time.Second)),
	)
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	// Act
	c.FetchQuote(ctx, "USO")
	c.Wait()

	// Assert: a network error, not a lost connection
	require.Len(t, rec.errs, 1)
	require.Equal(t, stock.OpQuote, rec.errs[0].op)
	require.Equal(t, stock.NetworkError, rec.errs[0].kind)
	require.True(t, strings.HasPrefix(rec.errs[0].message, quoteclient.MsgNetwork), rec.errs[0].message)
	require.Contains(t, rec.errs[0].message, "context deadline exceeded")
}

func TestRefreshQuote_TwiceIsIdempotent(t *testing.T) {
	// Arrange: identical answers for both cycles
	src := okSource()
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec)

	// Act: two overlapping refresh cycles
	c.RefreshQuote(t.Context(), "AAPL")
	c.RefreshQuote(t.Context(), "AAPL")
	c.Wait()

	// Assert: two deliveries, same final value whatever the order
	require.Len(t, rec.quotes, 2)
	require.Equal(t, rec.quotes[0], rec.quotes[1])
	require.Equal(t, "AAPL", rec.quotes[1].Symbol)
	require.Len(t, rec.logos, 2)
}

func TestRetry_ReissuesListAndRefresh(t *testing.T) {
	// Arrange
	src := okSource()
	rec := &recorder{}
	dir := directory.New()
	dir.Merge([]stock.Company{{Symbol: "AAPL", CompanyName: "Apple Inc."}})
	c := quoteclient.New(src, dir, rec)

	// Act
	c.Retry(t.Context())
	c.Wait()

	// Assert: list, logo, image and quote all requested once
	require.ElementsMatch(t, []string{"list", "logo:AAPL", "image:https://img.test/AAPL.png", "quote:AAPL"}, src.Requests())
	require.Equal(t, 1, rec.updated)
}

func TestCallbacksGoThroughDispatcher(t *testing.T) {
	// Arrange: a single UI goroutine draining dispatched closures
	uiQueue := make(chan func(), 16)
	done := make(chan struct{})
	var uiRuns atomic.Int32
	go func() {
		defer close(done)
		for f := range uiQueue {
			uiRuns.Add(1)
			f()
		}
	}()
	src := okSource()
	src.quote = func(string) (stock.Quote, error) {
		return stock.Quote{}, &stock.Error{Kind: stock.NetworkError, Op: "quote", StatusCode: 500}
	}
	rec := &recorder{}
	c := quoteclient.New(src, directory.New(), rec,
		quoteclient.WithDispatcher(quoteclient.DispatcherFunc(func(f func()) { uiQueue <- f })),
	)

	// Act: list + logo + failing quote
	c.Start(t.Context())
	c.Wait()
	close(uiQueue)
	<-done

	// Assert: every listener call ran on the UI goroutine
	require.EqualValues(t, 3, uiRuns.Load())
	require.Equal(t, 1, rec.updated)
	require.Len(t, rec.logos, 1)
	require.Len(t, rec.errs, 1)
}

func TestEndToEnd_QuoteServerErrorLogoStillDelivered(t *testing.T) {
	// Arrange: a fake upstream failing the quote endpoint only
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/stock/USO/quote", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/stock/USO/logo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"url":%q}`, srv.URL+"/logos/USO.png")
	})
	mux.HandleFunc("/logos/USO.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	rec := &recorder{}
	c := quoteclient.New(iex.NewClient(iex.WithBaseURL(srv.URL), iex.WithHTTPClient(srv.Client())), directory.New(), rec)

	// Act
	c.RefreshQuote(t.Context(), "")
	c.Wait()

	// Assert: network error for the quote, logo delivered
	require.Empty(t, rec.quotes)
	require.Len(t, rec.errs, 1)
	require.Equal(t, stock.NetworkError, rec.errs[0].kind)
	require.Contains(t, rec.errs[0].message, "500")
	require.Len(t, rec.logos, 1)
	require.Equal(t, pngBytes, rec.logos[0].Data)
	require.Equal(t, srv.URL+"/logos/USO.png", rec.logos[0].URL)
}

func TestMessage(t *testing.T) {
	require.Equal(t, quoteclient.MsgNoInternet, quoteclient.Message(stock.DecodeError, fmt.Errorf("x"), false))
	require.Equal(t, quoteclient.MsgNetwork, quoteclient.Message(stock.NetworkError, nil, true))
	require.Equal(t, quoteclient.MsgBadJSON+" x", quoteclient.Message(stock.DecodeError, fmt.Errorf("x"), true))
}
