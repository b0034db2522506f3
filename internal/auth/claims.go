package auth

import (
	"context"
	"time"
)

// Claims are the verified contents of an access token. Subject is the user
// id; the identity provider owns the account, Rootmarks only trusts it.
type Claims struct {
	Subject    string    `json:"sub"`
	Username   string    `json:"username"`
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// UserID returns the authenticated user's id.
func (c *Claims) UserID() string {
	return c.Subject
}

type contextKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok && claims != nil
}
