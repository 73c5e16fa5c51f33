package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
)

// Logger stores a request-scoped zap logger on the context and emits one structured entry per request.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With(
				zap.String("request_id", chiMid.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Bool("htmx", IsHTMX(r.Context())),
			)
			if ip := clientIP(r); ip != "" {
				logger = logger.With(zap.String("remote_ip", ip))
			}
			r = r.WithContext(observability.WithLogger(r.Context(), logger))

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.Int("status", rw.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes", rw.BytesWritten()),
			}
			if route := routePattern(r); route != "" {
				fields = append(fields, zap.String("route", route))
			}
			if visitor := GetSession(r).ID; visitor != "" {
				fields = append(fields, zap.String("visitor_id", visitor))
			}
			switch status := rw.Status(); {
			case status >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func clientIP(r *http.Request) string {
	// RealIP middleware already rewrote RemoteAddr when behind a trusted proxy
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
