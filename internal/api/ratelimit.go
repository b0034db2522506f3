package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/http/response"
)

const rateLimitMessage = "Too many requests. Please try again later."

// rateLimit limits chi routes per user. It must run after requireAuth.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + clientIP(r.Header.Get, r.RemoteAddr)
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			key = "user:" + claims.UserID()
		}

		if !s.limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path)
			response.TooManyRequests(w, rateLimitMessage, s.retryAfterSeconds(key), s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitOperation is the huma flavour of rateLimit. Operations verify the
// token themselves, so the key is derived from the header here.
func (s *Server) rateLimitOperation(ctx huma.Context, next func(huma.Context)) {
	if s.limiter == nil {
		next(ctx)
		return
	}

	key := "ip:" + clientIP(ctx.Header, ctx.RemoteAddr())
	if claims, err := s.verifyHeader(ctx.Header("Authorization")); err == nil {
		key = "user:" + claims.UserID()
	}

	if !s.limiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded", "key", key, "operation", ctx.Operation().OperationID)
		if secs := s.retryAfterSeconds(key); secs > 0 {
			ctx.SetHeader("Retry-After", strconv.Itoa(secs))
		}
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, rateLimitMessage,
			domainerrors.RateLimited(rateLimitMessage))
		return
	}

	next(ctx)
}

func (s *Server) retryAfterSeconds(key string) int {
	return int(math.Ceil(s.limiter.RetryAfter(key).Seconds()))
}

// clientIP extracts the client IP from forwarding headers, falling back to the
// remote address without its port.
func clientIP(header func(string) string, remoteAddr string) string {
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
		return remoteAddr[:i]
	}
	return remoteAddr
}
