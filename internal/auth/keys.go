// Package auth verifies the bearer tokens issued by the identity provider.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength    = 32
	keyHexLength = 64
	keyFileName  = "token.key"
)

// ResolveKey returns configured when set. Otherwise it loads the key from
// <dir>/token.key, generating and saving a new one on first start so a
// single-host install works without an identity provider.
func ResolveKey(configured []byte, dir string) ([]byte, error) {
	if len(configured) > 0 {
		if len(configured) != keyLength {
			return nil, fmt.Errorf("token key must be %d bytes, got %d", keyLength, len(configured))
		}
		return configured, nil
	}

	keyPath := filepath.Join(dir, keyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	if raw, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(raw))
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid token key length in %s: expected %d hex chars, got %d", keyPath, keyHexLength, len(keyHex))
		}
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid token key in %s: %w", keyPath, err)
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read token key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save token key: %w", err)
	}

	return key, nil
}
