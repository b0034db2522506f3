package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/rootmarks/rootmarks-server/internal/id"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// TokenService verifies PASETO v4.local access tokens. It can also mint
// them, which the seed command uses for local development.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	issuer       string
	audience     string
	now          func() time.Time
}

// NewTokenService creates a token service for a 32-byte key.
func NewTokenService(key []byte, issuer, audience string) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: symmetricKey,
		issuer:       issuer,
		audience:     audience,
		now:          time.Now,
	}, nil
}

// Mint issues a token for userID valid for ttl.
func (s *TokenService) Mint(userID, username string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetSubject(userID)
	token.SetAudience(s.audience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))

	tokenID, err := id.Generate("tok")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	if username != "" {
		//nolint:errcheck // Token.Set only errors on unmarshalable values
		_ = token.Set("username", username)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts a token and checks issuer, audience, and validity window.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(s.audience))
	parser.AddRule(paseto.IssuedBy(s.issuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &claims, nil
}
