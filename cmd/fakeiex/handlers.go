package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stocks/internal/stock"
)

type server struct {
	fx        fixtures
	publicURL string
	logger    *slog.Logger
}

// newRouter serves the list, quote and logo endpoints under /1.0 plus the
// logo images they point at. An empty publicURL derives logo urls from the
// request host.
func newRouter(fx fixtures, publicURL string, logger *slog.Logger) http.Handler {
	s := &server{fx: fx, publicURL: strings.TrimRight(publicURL, "/"), logger: logger}

	r := chi.NewRouter()
	r.Use(s.logRequests, recoverPanic, withJSONHeaders)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/1.0/stock", func(r chi.Router) {
		r.Get("/market/list/infocus", s.handleInFocus)
		r.Get("/{symbol}/quote", s.handleQuote)
		r.Get("/{symbol}/logo", s.handleLogo)
	})
	r.Get("/logos/{file}", s.handleLogoImage)
	return r
}

func (s *server) handleInFocus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.fx.inFocus)
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, q)
}

func (s *server) handleLogo(w http.ResponseWriter, r *http.Request) {
	q, ok := s.lookup(w, r)
	if !ok {
		return
	}
	base := s.publicURL
	if base == "" {
		base = "http://" + r.Host
	}
	writeJSON(w, map[string]string{"url": base + "/logos/" + q.Symbol + ".png"})
}

func (s *server) handleLogoImage(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSuffix(chi.URLParam(r, "file"), ".png"))
	if _, ok := s.fx.quotes[symbol]; !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.fx.logo)
}

// lookup resolves the {symbol} route parameter, writing the error response
// when it cannot be served.
func (s *server) lookup(w http.ResponseWriter, r *http.Request) (stock.Quote, bool) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if s.fx.broken[symbol] {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return stock.Quote{}, false
	}
	q, found := s.fx.quotes[symbol]
	if !found {
		http.Error(w, "Unknown symbol", http.StatusNotFound)
		return stock.Quote{}, false
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
