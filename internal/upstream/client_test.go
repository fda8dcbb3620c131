package upstream

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000, // tests should not wait on pacing
		Burst:             1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(client.Close)

	return client
}

func TestListEvents(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("phone_hash"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"name":"Warehouse Rave","venue":"The Dock (Oakland)","raw_date":"2024/05/03","genre":"House"},
			{"name":"Open Air","venue":"Pier 70 (SF)","raw_date":"2024/05/11","ticket_info":"$30-50"}
		]}`))
	}))

	events, err := client.ListEvents(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "Warehouse Rave", events[0].Name)
	assert.Equal(t, "$30-50", events[1].TicketInfo)
	assert.False(t, events[0].IsFavorite)
}

func TestListEvents_WithPhoneHash(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("phone_hash"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"name":"Warehouse Rave","is_favorite":true}],"phoneNumber":"+15551234567"}`))
	}))

	events, err := client.ListEvents(context.Background(), "abc123")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.True(t, events[0].IsFavorite)
}

func TestFavoriteEventsByHash(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/favorite_events_by_hash", r.URL.Path)
		assert.Equal(t, "deadbeef", r.URL.Query().Get("phone_hash"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"name":"Warehouse Rave","venue":"The Dock (Oakland)"}]}`))
	}))

	events, err := client.FavoriteEventsByHash(context.Background(), "deadbeef")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Warehouse Rave", events[0].Name)
}

func TestVerifyCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/verify_2fa", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "+15551234567", req["phone_number"])
		assert.Equal(t, "123456", req["verification_code"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"phone_number":"+15551234567"}`))
	}))

	result, err := client.VerifyCode(context.Background(), "+15551234567", "123456")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "+15551234567", result.PhoneNumber)
}

func TestCheckUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/check_user", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"name":"Alex"}}`))
	}))

	result, err := client.CheckUser(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.Equal(t, "Alex", result.Name)
}

func TestGetProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "+15551234567", r.URL.Query().Get("phone_number"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"name":"Alex","genre_list":["House"],"city_list":["Oakland"]}}`))
	}))

	profile, err := client.GetProfile(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "Alex", profile.Name)
	assert.Equal(t, []string{"House"}, profile.GenreList)
	assert.Equal(t, []string{"Oakland"}, profile.CityList)
}

func TestStarEvent_SendsMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/star_event", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			PhoneNumber   string        `json:"phone_number"`
			Event         string        `json:"event"`
			EventMetadata EventMetadata `json:"event_metadata"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "+15551234567", req.PhoneNumber)
		assert.Equal(t, "Warehouse Rave", req.Event)
		assert.Equal(t, "The Dock (Oakland)", req.EventMetadata.Venue)
		assert.Equal(t, "2024/05/03", req.EventMetadata.RawDate)

		w.WriteHeader(http.StatusOK)
	}))

	err := client.StarEvent(context.Background(), "+15551234567", "Warehouse Rave", EventMetadata{
		Name:    "Warehouse Rave",
		Venue:   "The Dock (Oakland)",
		RawDate: "2024/05/03",
	})
	assert.NoError(t, err)
}

func TestUnstarEvent_IdentifiesByMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/unstar_event", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "+15551234567", req["phone_number"])
		assert.NotContains(t, req, "event")

		meta, ok := req["event_metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Warehouse Rave", meta["name"])

		w.WriteHeader(http.StatusOK)
	}))

	err := client.UnstarEvent(context.Background(), "+15551234567", EventMetadata{
		Name:  "Warehouse Rave",
		Venue: "The Dock (Oakland)",
	})
	assert.NoError(t, err)
}

func TestGetName_PostsPhoneHash(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/get_name", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "deadbeef", req["phone_hash"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Alex"}`))
	}))

	name, err := client.GetName(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "Alex", name)
}

func TestDoRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"server error", http.StatusInternalServerError, ErrServer},
		{"bad gateway", http.StatusBadGateway, ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.ListEvents(context.Background(), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// Operation context is attached.
			var upErr *Error
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, "listEvents", upErr.Op)
		})
	}
}

func TestDoRequest_ContextCanceled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.SendCode(ctx, "+15551234567")
	assert.Error(t, err)
}

func TestEnsureUser_NoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.EnsureUser(context.Background(), "+15551234567"))
}
