package api

import (
	"net/http"
	"time"

	"github.com/RMahshie/roomtreat/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// RequestLogger returns a Chi middleware that logs HTTP requests using zerolog
// and records them in m. It also puts a request scoped logger carrying the
// request ID into the context for log.Ctx.
func RequestLogger(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(logger.WithContext(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				var route string
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					route = rctx.RoutePattern()
				}
				m.ObserveRequest(r.Method, route, status, elapsed)

				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Int("status", status).
					Dur("latency", elapsed).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
