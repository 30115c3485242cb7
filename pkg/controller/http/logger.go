package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/request_id"
)

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// loggingMiddleware issues the request ID and writes one access log per
// request, including requests whose handler panicked.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, reqID := request_id.Generate(r.Context())
		logger := logging.From(ctx).With("request_id", reqID)
		ctx = logging.With(ctx, logger)

		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w}
		defer func() {
			logger.Info("Access Log",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(sw, r.WithContext(ctx))
	})
}
