package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutme/sprout-server/internal/domain"
	domainerrors "github.com/sproutme/sprout-server/internal/errors"
	"github.com/sproutme/sprout-server/internal/validation"
)

func newTestUserService(t *testing.T, handler http.Handler) *UserService {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(newTestStore(t), newTestUpstream(t, handler), validation.New(), logger)
}

func profileHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"name":       "Alex",
				"genre_list": []string{"House"},
				"city_list":  []string{"Oakland"},
			},
		})
	})
	mux.HandleFunc("POST /update_user_name", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /user/genres", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /user/cities", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestProfile_RefreshesCache(t *testing.T) {
	svc := newTestUserService(t, profileHandler())

	user, err := svc.Profile(context.Background(), testPhone, testHash)
	require.NoError(t, err)

	assert.Equal(t, "Alex", user.Name)
	assert.Equal(t, []string{"House"}, user.GenreList)
	assert.Equal(t, []string{"Oakland"}, user.CityList)

	// The profile landed in the local cache.
	cached, err := svc.store.GetUser(testHash)
	require.NoError(t, err)
	assert.Equal(t, "Alex", cached.Name)
}

func TestProfile_ServesCacheWhenUpstreamDown(t *testing.T) {
	svc := newTestUserService(t, profileHandler())
	ctx := context.Background()

	_, err := svc.Profile(ctx, testPhone, testHash)
	require.NoError(t, err)

	// Replace the client with one pointed at a dead upstream.
	down := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc.client = newTestUpstream(t, down)

	user, err := svc.Profile(ctx, testPhone, testHash)
	require.NoError(t, err)
	assert.Equal(t, "Alex", user.Name)
}

func TestUpdateName(t *testing.T) {
	svc := newTestUserService(t, profileHandler())

	user, err := svc.UpdateName(context.Background(), testPhone, testHash, UpdateNameRequest{Name: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)

	cached, err := svc.store.GetUser(testHash)
	require.NoError(t, err)
	assert.Equal(t, "Sam", cached.Name)
}

func TestUpdateName_LengthBounds(t *testing.T) {
	svc := newTestUserService(t, profileHandler())
	ctx := context.Background()

	_, err := svc.UpdateName(ctx, testPhone, testHash, UpdateNameRequest{Name: "A"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = svc.UpdateName(ctx, testPhone, testHash, UpdateNameRequest{Name: "this name is much too long"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestUpdateGenresAndCities(t *testing.T) {
	svc := newTestUserService(t, profileHandler())
	ctx := context.Background()

	user, err := svc.UpdateGenres(ctx, testPhone, testHash, UpdateGenresRequest{GenreList: []string{"Techno", "House"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Techno", "House"}, user.GenreList)

	user, err = svc.UpdateCities(ctx, testPhone, testHash, UpdateCitiesRequest{CityList: []string{"SF"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"SF"}, user.CityList)
	// The earlier genre update survives.
	assert.Equal(t, []string{"Techno", "House"}, user.GenreList)
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	svc := newTestUserService(t, profileHandler())
	ctx := context.Background()

	settings, err := svc.Settings(ctx, testHash)
	require.NoError(t, err)
	assert.True(t, settings.DarkMode)
	assert.Nil(t, settings.Filters)

	saved, err := svc.UpdateSettings(ctx, testHash, UpdateSettingsRequest{
		DarkMode: false,
		Filters:  &domain.FilterState{Genres: []string{"House"}, PriceSort: domain.PriceSortAsc},
	})
	require.NoError(t, err)
	assert.False(t, saved.DarkMode)

	loaded, err := svc.Settings(ctx, testHash)
	require.NoError(t, err)
	assert.False(t, loaded.DarkMode)
	require.NotNil(t, loaded.Filters)
	assert.Equal(t, []string{"House"}, loaded.Filters.Genres)
	assert.Equal(t, domain.PriceSortAsc, loaded.Filters.PriceSort)
}
