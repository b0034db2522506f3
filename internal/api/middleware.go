package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/http/response"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
)

// requireAuth is middleware for routes outside huma. It validates the bearer
// token, ensures the profile exists and attaches the claims to the context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.verifyHeader(r.Header.Get("Authorization"))
		if err != nil {
			response.Unauthorized(w, err.Error(), s.logger)
			return
		}

		if err := s.ensureProfile(r.Context(), claims); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// requestLogger replaces chi's middleware.Logger with one line of slog per
// request and records the request duration by route pattern.
func requestLogger(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			elapsed := time.Since(start)
			m.ObserveRequest(r.Method, route, status, elapsed)

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", elapsed),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
