package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with the domain helpers used across the
// service.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout.  Development environments get
// the text handler; everything else logs JSON.
func New(level, env string) *Logger {
	return NewWithWriter(os.Stdout, level, env)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, env string) *Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	var handler slog.Handler
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything.  Handy in tests.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
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

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// Hold lifecycle

// LogHoldAcquired logs a granted hold.
func (l *Logger) LogHoldAcquired(ctx context.Context, holdID, showtimeID string, seats []string, expiresAt time.Time) {
	l.Logger.InfoContext(ctx, "Hold Acquired",
		slog.String("hold_id", holdID),
		slog.String("showtime_id", showtimeID),
		slog.Any("seats", seats),
		slog.Time("expires_at", expiresAt),
	)
}

// LogHoldCommitted logs a hold converted to a booking.
func (l *Logger) LogHoldCommitted(ctx context.Context, holdID, showtimeID string, seats []string) {
	l.Logger.InfoContext(ctx, "Hold Committed",
		slog.String("hold_id", holdID),
		slog.String("showtime_id", showtimeID),
		slog.Any("seats", seats),
	)
}

// LogHoldReleased logs a voluntary release.
func (l *Logger) LogHoldReleased(ctx context.Context, holdID, showtimeID string, seats []string) {
	l.Logger.InfoContext(ctx, "Hold Released",
		slog.String("hold_id", holdID),
		slog.String("showtime_id", showtimeID),
		slog.Any("seats", seats),
	)
}

// LogHoldExpired logs a hold reclaimed after its TTL.
func (l *Logger) LogHoldExpired(ctx context.Context, holdID, showtimeID string, seats []string) {
	l.Logger.InfoContext(ctx, "Hold Expired",
		slog.String("hold_id", holdID),
		slog.String("showtime_id", showtimeID),
		slog.Any("seats", seats),
	)
}

// LogForceRelease logs an administrative unlock.
func (l *Logger) LogForceRelease(ctx context.Context, holdID, actor, reason string, seats []string) {
	l.Logger.WarnContext(ctx, "Hold Force Released",
		slog.String("hold_id", holdID),
		slog.String("actor", actor),
		slog.String("reason", reason),
		slog.Any("seats", seats),
	)
}

// HTTP

// LogHTTPRequest logs a served request.
func (l *Logger) LogHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration, ip, requestID string) {
	l.Logger.InfoContext(ctx, "HTTP Request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("ip", ip),
		slog.String("request_id", requestID),
	)
}
