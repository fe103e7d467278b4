// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so observability-specific helpers can hang off it.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger for background components that run
// outside a request context (hubs, notifiers, pumps).
var GlobalLogger = &Logger{
	Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})),
}

// WSLogger logs websocket lifecycle events for one hub.
type WSLogger struct {
	hub    string
	logger *Logger
}

func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{hub: hubName, logger: GlobalLogger}
}

func (l *WSLogger) attrs(userID uint, extra ...slog.Attr) []any {
	out := []any{
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
	}
	for _, a := range extra {
		out = append(out, a)
	}
	return out
}

// LogConnect records a new websocket connection.
func (l *WSLogger) LogConnect(ctx context.Context, userID uint) {
	l.logger.InfoContext(ctx, "websocket connected", l.attrs(userID)...)
}

// LogDisconnect records a closed connection and why it closed.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		l.attrs(userID, slog.String("reason", reason))...)
}

// LogError records a read/write failure on a connection.
func (l *WSLogger) LogError(ctx context.Context, userID uint, err error, eventType string) {
	l.logger.ErrorContext(ctx, "websocket error",
		l.attrs(userID,
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))...)
}

// LogEvent records a delivered event.
func (l *WSLogger) LogEvent(ctx context.Context, userID uint, eventType string) {
	l.logger.InfoContext(ctx, "websocket event",
		l.attrs(userID, slog.String("event_type", eventType))...)
}
