package providers

import (
	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
)

// AuthKey wraps the token verification key bytes.
type AuthKey []byte

// ProvideAuthKey uses the configured key or loads/generates one under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	configured := len(cfg.Auth.TokenKey) > 0
	key, err := auth.ResolveKey(cfg.Auth.TokenKey, cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenKey = key

	log.Info("Token key loaded",
		"from_config", configured,
		"issuer", cfg.Auth.Issuer,
		"audience", cfg.Auth.Audience,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token verifier.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.Issuer, cfg.Auth.Audience)
}
