// Package logger builds the process slog.Logger. Attributes whose key names a
// credential are masked before they reach the handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SecretKeys are attribute keys whose values are always masked.
var SecretKeys = map[string]struct{}{
	"access_token":  {},
	"refresh_token": {},
	"client_secret": {},
	"code":          {},
	"authorization": {},
}

// New returns a logger on stderr. level is one of debug, info, warn or error
// (case-insensitive, default info); format is "json" or "text".
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redact,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to slog.Level. Unknown names give info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := SecretKeys[strings.ToLower(a.Key)]; ok && a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskToken(a.Value.String()))
	}
	return a
}

const maskKeep = 6

// MaskToken reduces a credential to its last six characters so log lines can
// tell tokens apart without exposing them.
func MaskToken(tok string) string {
	if len(tok) <= maskKeep {
		return "***"
	}
	return "***" + tok[len(tok)-maskKeep:]
}
