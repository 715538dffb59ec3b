package internal

import (
	"log/slog"
	"os"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SetupLogger configures the default slog logger on stderr with the given
// level name. Unrecognized names fall back to info. Diagnostics belong in
// the findings report; slog carries debug tracing only.
func SetupLogger(level string) {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	if !ok {
		slog.Warn("unknown log level, defaulting to info", "level", level)
	}
}
