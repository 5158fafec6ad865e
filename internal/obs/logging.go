package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

// NewLogger returns a stdout logger. format is "json" (default) or "console".
func NewLogger(format, level string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, format, level)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "wholesale-checkout").Logger()
}

// quietRoutes are polled by infrastructure and only logged at debug.
var quietRoutes = map[string]bool{
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// RequestLogger writes one "http_request" line per request.
type RequestLogger struct {
	Logger zerolog.Logger
}

// Middleware implements the chi middleware signature.
func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := NewStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := routeOf(r)
		status := rec.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = l.Logger.Error()
		case status >= http.StatusBadRequest:
			evt = l.Logger.Warn()
		case quietRoutes[route]:
			evt = l.Logger.Debug()
		default:
			evt = l.Logger.Info()
		}
		evt = evt.Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int64("bytes", rec.BytesWritten()).
			Str("request_id", middleware.GetReqID(r.Context()))
		if orderID := chi.URLParam(r, "orderId"); orderID != "" {
			evt = evt.Str("order_id", orderID)
		}
		if tenantID, ok := tenant.FromContext(r.Context()); ok {
			evt = evt.Str("tenant_id", tenantID)
		}
		if rec.Header().Get(replayedHeader) == "true" {
			evt = evt.Bool("idempotent_replay", true)
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String())
		}
		evt.Msg("http_request")
	})
}
