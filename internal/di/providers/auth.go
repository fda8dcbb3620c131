package providers

import (
	"github.com/samber/do/v2"

	"github.com/sproutme/sprout-server/internal/auth"
	"github.com/sproutme/sprout-server/internal/config"
	"github.com/sproutme/sprout-server/internal/logger"
	"github.com/sproutme/sprout-server/internal/ratelimit"
)

// AuthKey wraps the session token key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the session token key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.BasePath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.SessionTokenKey = key

	log.Info("Session token key loaded",
		"session_duration", cfg.Auth.SessionDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.SessionDuration)
}

// OTPLimiter paces verification code sends per phone number.
type OTPLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *OTPLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// ProvideOTPLimiter provides the per-number OTP send limiter.
func ProvideOTPLimiter(i do.Injector) (*OTPLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)

	// Config is expressed per minute, the limiter works per second.
	limiter := ratelimit.New(cfg.OTP.SendsPerMinute/60.0, cfg.OTP.Burst)
	return &OTPLimiter{KeyedRateLimiter: limiter}, nil
}
