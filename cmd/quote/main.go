package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"stocks/internal/config"
	"stocks/internal/directory"
	"stocks/internal/httpx"
	"stocks/internal/quoteclient"
	"stocks/internal/reachability"
	"stocks/internal/stock"
	"stocks/internal/stock/iex"
)

func main() {
	var symbol string
	var list bool
	var timeout int
	var configPath string

	flag.StringVar(&symbol, "symbol", "", "symbol to quote (default: the configured fallback symbol)")
	flag.BoolVar(&list, "list", false, "print the in-focus company list instead of a quote")
	flag.IntVar(&timeout, "timeout", 15, "overall timeout seconds")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, _, err := cfg.Log.NewLogger(false)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	httpClient := httpx.New(time.Duration(cfg.API.RequestTimeoutSec) * time.Second)
	httpClient.UserAgent = cfg.API.UserAgent
	source := iex.NewClient(
		iex.WithBaseURL(cfg.API.BaseURL),
		iex.WithHTTPClient(httpClient),
		iex.WithMaxBodyBytes(cfg.API.MaxBodyBytes),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	dir := directory.New()
	out := &printer{w: os.Stdout, dir: dir}
	client := quoteclient.New(source, dir, out,
		quoteclient.WithProbe(reachability.NewDialProbe(cfg.Client.ProbeAddr, time.Duration(cfg.Client.ProbeTimeoutSec)*time.Second)),
		quoteclient.WithFallbackSymbol(cfg.Client.FallbackSymbol),
		quoteclient.WithLogger(logger),
	)

	if list {
		client.FetchCompanyList(ctx)
	} else {
		resolved := client.RefreshQuote(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
		logger.Debug("quoting", "symbol", resolved)
	}
	client.Wait()

	if out.failed {
		os.Exit(1)
	}
}

// printer writes completions to w. quoteclient.Immediate calls it from
// several fetch goroutines, hence the lock.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	dir    *directory.Directory
	failed bool
}

func (p *printer) OnDirectoryUpdated() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, name := range p.dir.Names() {
		sym, _ := p.dir.SymbolAt(i)
		fmt.Fprintf(p.w, "%-6s %s\n", sym, name)
	}
}

func (p *printer) OnQuoteReady(q stock.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, _ := json.MarshalIndent(struct {
		stock.Quote
		Direction string `json:"direction"`
	}{q, q.Direction().String()}, "", "  ")
	fmt.Fprintln(p.w, string(b))
}

func (p *printer) OnLogoReady(l stock.Logo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "logo %s: %s, %s (%s)\n", l.Symbol, l.ContentType, humanize.Bytes(uint64(len(l.Data))), l.URL)
}

func (p *printer) OnError(op string, kind stock.ErrorKind, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
	fmt.Fprintf(os.Stderr, "%s %s: %s\n", op, kind, message)
}
