package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUserID contextKey = "user_id"

// requireAuth validates the bearer token against the identity provider
// and attaches the resolved user ID to the request context. Every request
// is a fresh introspection round-trip; there is no session cache, so a
// revoked token stops working immediately.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			response.Unauthorized(w, "missing or malformed authorization header", s.logger)
			return
		}

		identity, err := s.provider.Introspect(r.Context(), token)
		if err != nil {
			s.logger.Debug("token introspection failed", "error", err)
			response.Unauthorized(w, introspectionMessage(err), s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, identity.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// introspectionMessage picks the caller-facing message for a failed
// introspection, passing the provider's message through when it has one.
func introspectionMessage(err error) string {
	var perr *auth.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return "invalid or expired token"
}

// limitSignup applies the per-IP signup rate limit. RealIP middleware
// runs first, so RemoteAddr holds the client address.
func (s *Server) limitSignup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.signupLimiter.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "too many signup attempts, slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr when present so all requests
// from one host share a limiter bucket.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
