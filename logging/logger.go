package logging

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// InitLogger configures the global zerolog logger. An empty or unknown level
// falls back to info; any format other than "json" selects the console writer.
func InitLogger(logLevel, logFormat string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if logLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(logLevel); err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	// stderr keeps stdout clean for the search command's JSON output
	if logFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// Info logs an info message with optional fields
func Info() *zerolog.Event {
	return log.Info()
}

// Debug logs a debug message with optional fields
func Debug() *zerolog.Event {
	return log.Debug()
}

// Error logs an error message with optional fields
func Error() *zerolog.Event {
	return log.Error()
}

// Warn logs a warning message with optional fields
func Warn() *zerolog.Event {
	return log.Warn()
}

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event {
	return log.Fatal()
}

func withRequest(event *zerolog.Event, r *http.Request) *zerolog.Event {
	event = event.
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("client_ip", getClientIP(r))
	if id := RequestIDFromContext(r.Context()); id != "" {
		event = event.Str("request_id", id)
	}
	return event
}

// InfoWithRequest returns an info event with the request's method, URL,
// client IP and request id.
func InfoWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Info(), r)
}

func ErrorWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Error(), r)
}

func DebugWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Debug(), r)
}

func WarnWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Warn(), r)
}

// ContextWithRequestID stores a request id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext returns a debug logger event carrying the request id of ctx,
// if any.
func WithContext(ctx context.Context) *zerolog.Event {
	event := log.Debug()
	if id := RequestIDFromContext(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	return event
}

// WarnWithContext is WithContext at warn level.
func WarnWithContext(ctx context.Context) *zerolog.Event {
	event := log.Warn()
	if id := RequestIDFromContext(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	return event
}

// getClientIP extracts the real client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}
