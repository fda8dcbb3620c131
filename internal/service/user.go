package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sproutme/sprout-server/internal/domain"
	domainerrors "github.com/sproutme/sprout-server/internal/errors"
	"github.com/sproutme/sprout-server/internal/store"
	"github.com/sproutme/sprout-server/internal/upstream"
	"github.com/sproutme/sprout-server/internal/validation"
)

// UserService manages profiles and per-user settings. The upstream owns
// the profile of record; the local store is a cache plus the settings
// that never leave this server.
type UserService struct {
	store     *store.Store
	client    *upstream.Client
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, client *upstream.Client, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     st,
		client:    client,
		validator: validator,
		logger:    logger,
	}
}

// UpdateNameRequest sets the user's display name.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=20"`
}

// UpdateGenresRequest replaces the user's preferred genres.
type UpdateGenresRequest struct {
	GenreList []string `json:"genre_list"`
}

// UpdateCitiesRequest replaces the user's preferred cities.
type UpdateCitiesRequest struct {
	CityList []string `json:"city_list"`
}

// UpdateSettingsRequest replaces the user's stored settings.
type UpdateSettingsRequest struct {
	DarkMode bool                `json:"dark_mode"`
	Filters  *domain.FilterState `json:"filters,omitempty"`
}

// Profile returns the user's profile, refreshing the local cache from
// the upstream. When the upstream is unreachable the cached copy is
// served instead.
func (s *UserService) Profile(ctx context.Context, phoneNumber, phoneHash string) (*domain.User, error) {
	profile, err := s.client.GetProfile(ctx, phoneNumber)
	if err != nil {
		cached, cacheErr := s.store.GetUser(phoneHash)
		if cacheErr == nil {
			s.logger.Warn("Serving cached profile, upstream unavailable", "phone_hash", phoneHash, "error", err)
			return cached, nil
		}
		return nil, upstreamError("get profile", err)
	}

	user := &domain.User{
		PhoneNumber: phoneNumber,
		PhoneHash:   phoneHash,
		Name:        profile.Name,
		GenreList:   profile.GenreList,
		CityList:    profile.CityList,
	}
	if err := s.store.SaveUser(user); err != nil {
		s.logger.Warn("Failed to cache profile", "phone_hash", phoneHash, "error", err)
	}
	return user, nil
}

// UpdateName sets the display name upstream and refreshes the cache.
func (s *UserService) UpdateName(ctx context.Context, phoneNumber, phoneHash string, req UpdateNameRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !domain.ValidName(req.Name) {
		return nil, domainerrors.Validationf("name must be between %d and %d characters",
			domain.NameMinLength, domain.NameMaxLength)
	}

	if err := s.client.UpdateName(ctx, phoneNumber, req.Name); err != nil {
		return nil, upstreamError("update name", err)
	}

	return s.updateCached(phoneNumber, phoneHash, func(u *domain.User) {
		u.Name = req.Name
	})
}

// UpdateGenres replaces the preferred genre list upstream and locally.
func (s *UserService) UpdateGenres(ctx context.Context, phoneNumber, phoneHash string, req UpdateGenresRequest) (*domain.User, error) {
	if err := s.client.UpdateGenres(ctx, phoneNumber, req.GenreList); err != nil {
		return nil, upstreamError("update genres", err)
	}

	return s.updateCached(phoneNumber, phoneHash, func(u *domain.User) {
		u.GenreList = req.GenreList
	})
}

// UpdateCities replaces the preferred city list upstream and locally.
func (s *UserService) UpdateCities(ctx context.Context, phoneNumber, phoneHash string, req UpdateCitiesRequest) (*domain.User, error) {
	if err := s.client.UpdateCities(ctx, phoneNumber, req.CityList); err != nil {
		return nil, upstreamError("update cities", err)
	}

	return s.updateCached(phoneNumber, phoneHash, func(u *domain.User) {
		u.CityList = req.CityList
	})
}

// Settings returns the user's stored settings, defaults when none are
// saved yet.
func (s *UserService) Settings(ctx context.Context, phoneHash string) (*domain.UserSettings, error) {
	settings, err := s.store.GetSettings(phoneHash)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the user's stored settings.
func (s *UserService) UpdateSettings(ctx context.Context, phoneHash string, req UpdateSettingsRequest) (*domain.UserSettings, error) {
	settings := &domain.UserSettings{
		PhoneHash: phoneHash,
		DarkMode:  req.DarkMode,
		Filters:   req.Filters,
	}
	if err := s.store.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// updateCached applies a mutation to the cached profile, creating the
// cache entry when the user has none yet.
func (s *UserService) updateCached(phoneNumber, phoneHash string, mutate func(*domain.User)) (*domain.User, error) {
	user, err := s.store.GetUser(phoneHash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get cached user: %w", err)
		}
		user = &domain.User{PhoneNumber: phoneNumber, PhoneHash: phoneHash}
	}

	mutate(user)

	if err := s.store.SaveUser(user); err != nil {
		return nil, fmt.Errorf("cache user: %w", err)
	}
	return user, nil
}
