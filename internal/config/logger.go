package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the text logger described by l. When toFile is true and a
// file is configured, records are appended there; otherwise they go to stderr.
// The returned close function must be called on exit.
func (l Log) NewLogger(toFile bool) (*slog.Logger, func() error, error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if toFile && l.File != "" {
		f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.SlogLevel()})
	return slog.New(h), closeFn, nil
}
