package upstream

import (
	"context"
	"net/url"
)

// EnsureUser creates the user record if it does not exist yet.
// The upstream treats repeat calls as a no-op, so this is safe to call
// on every login.
func (c *Client) EnsureUser(ctx context.Context, phoneNumber string) error {
	return c.postJSON(ctx, "ensureUser", "/user", phoneRequest{PhoneNumber: phoneNumber}, nil)
}

// CheckUser reports whether a user exists and their display name.
// A user without a name is treated as new and routed to the name prompt.
func (c *Client) CheckUser(ctx context.Context, phoneNumber string) (*CheckUserResult, error) {
	var resp checkUserResponse
	err := c.postJSON(ctx, "checkUser", "/check_user", phoneRequest{PhoneNumber: phoneNumber}, &resp)
	if err != nil {
		return nil, err
	}
	return &CheckUserResult{
		Exists: resp.Success,
		Name:   resp.Data.Name,
	}, nil
}

// GetProfile fetches the user record.
func (c *Client) GetProfile(ctx context.Context, phoneNumber string) (*Profile, error) {
	query := url.Values{}
	query.Set("phone_number", phoneNumber)

	var envelope profileEnvelope
	if err := c.getJSON(ctx, "getProfile", "/user", query, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// UpdateName sets the user's display name.
func (c *Client) UpdateName(ctx context.Context, phoneNumber, name string) error {
	return c.postJSON(ctx, "updateName", "/update_user_name", updateNameRequest{
		PhoneNumber: phoneNumber,
		Name:        name,
	}, nil)
}

// UpdateGenres replaces the user's preferred genre list.
func (c *Client) UpdateGenres(ctx context.Context, phoneNumber string, genres []string) error {
	return c.putJSON(ctx, "updateGenres", "/user/genres", updateGenresRequest{
		PhoneNumber: phoneNumber,
		GenreList:   genres,
	}, nil)
}

// UpdateCities replaces the user's preferred city list.
func (c *Client) UpdateCities(ctx context.Context, phoneNumber string, cities []string) error {
	return c.putJSON(ctx, "updateCities", "/user/cities", updateCitiesRequest{
		PhoneNumber: phoneNumber,
		CityList:    cities,
	}, nil)
}

// GetName resolves a phone hash to a display name for shared views.
func (c *Client) GetName(ctx context.Context, phoneHash string) (string, error) {
	var resp getNameResponse
	if err := c.postJSON(ctx, "getName", "/get_name", getNameRequest{PhoneHash: phoneHash}, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}
