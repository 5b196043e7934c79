package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"stocks/internal/config"
	"stocks/internal/directory"
	"stocks/internal/httpx"
	"stocks/internal/quoteclient"
	"stocks/internal/reachability"
	"stocks/internal/stock/iex"
	"stocks/internal/tui"
)

func main() {
	// Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the screen belongs to the UI, so the log goes to a file
	logger, closeLog, err := cfg.Log.NewLogger(true)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()

	httpClient := httpx.New(time.Duration(cfg.API.RequestTimeoutSec) * time.Second)
	httpClient.UserAgent = cfg.API.UserAgent

	source := iex.NewClient(
		iex.WithBaseURL(cfg.API.BaseURL),
		iex.WithHTTPClient(httpClient),
		iex.WithHeader(http.Header{"Accept": []string{"application/json"}}),
		iex.WithMaxBodyBytes(cfg.API.MaxBodyBytes),
	)
	probe := reachability.NewDialProbe(cfg.Client.ProbeAddr, time.Duration(cfg.Client.ProbeTimeoutSec)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := directory.New()
	model := tui.New(ctx, dir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	client := quoteclient.New(source, dir, model,
		quoteclient.WithDispatcher(tui.Dispatcher(p)),
		quoteclient.WithSelector(model),
		quoteclient.WithProbe(probe),
		quoteclient.WithFallbackSymbol(cfg.Client.FallbackSymbol),
		quoteclient.WithLogger(logger),
	)
	model.Attach(client)

	logger.Info("ui starting", "base_url", cfg.API.BaseURL)
	_, runErr := p.Run()
	// fetches still in flight after quit are dropped
	stop()
	if runErr != nil && ctx.Err() == nil {
		logger.Error("ui stopped", "err", runErr)
		closeLog()
		log.Fatalf("ui: %v", runErr)
	}
	logger.Info("ui stopped")
}
