package providers

import (
	"github.com/samber/do/v2"

	"github.com/sproutme/sprout-server/internal/auth"
	"github.com/sproutme/sprout-server/internal/logger"
	"github.com/sproutme/sprout-server/internal/service"
	"github.com/sproutme/sprout-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	upstreamHandle := do.MustInvoke[*UpstreamHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	otpLimiter := do.MustInvoke[*OTPLimiter](i)
	trailHandle := do.MustInvoke[*AuditTrailHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		upstreamHandle.Client,
		tokens,
		otpLimiter.KeyedRateLimiter,
		trailHandle.Trail,
		validator,
		log.Logger,
	), nil
}

// ProvideUserService provides the user profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	upstreamHandle := do.MustInvoke[*UpstreamHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(
		storeHandle.Store,
		upstreamHandle.Client,
		validator,
		log.Logger,
	), nil
}

// ProvideEventService provides the event query and favorites service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	upstreamHandle := do.MustInvoke[*UpstreamHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	trailHandle := do.MustInvoke[*AuditTrailHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEventService(
		catalogHandle.Catalog,
		storeHandle.Store,
		upstreamHandle.Client,
		indexHandle.SearchIndex,
		trailHandle.Trail,
		log.Logger,
	), nil
}
