package main

import (
	"io"
	"log/slog"
	"os"
)

var (
	logLevel = new(slog.LevelVar)
	theLog   = newLog(os.Stderr, logLevel)
)

// newLog returns a text logger without timestamps that omits the level of
// info records.
func newLog(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok && l == slog.LevelInfo {
					return slog.Attr{}
				}
			}
			return a
		},
	}))
}

// scriptLog tags the records about one input with its name.
func scriptLog(name string) *slog.Logger {
	return theLog.With("script", name)
}
