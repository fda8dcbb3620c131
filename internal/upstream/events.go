package upstream

import (
	"context"
	"net/url"
)

// ListEvents fetches the full event catalog. When phoneHash is non-empty
// the rows carry that user's is_favorite flags.
func (c *Client) ListEvents(ctx context.Context, phoneHash string) ([]RawEvent, error) {
	query := url.Values{}
	if phoneHash != "" {
		query.Set("phone_hash", phoneHash)
	}

	var envelope eventsEnvelope
	if err := c.getJSON(ctx, "listEvents", "/events", query, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// FavoriteEventsByPhone fetches the user's favorited events.
func (c *Client) FavoriteEventsByPhone(ctx context.Context, phoneNumber string) ([]RawEvent, error) {
	query := url.Values{}
	query.Set("phone_number", phoneNumber)

	var envelope eventsEnvelope
	if err := c.getJSON(ctx, "favoritesByPhone", "/favorite_events_by_phone", query, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// FavoriteEventsByHash fetches favorites for a shared view, identified
// only by the phone hash.
func (c *Client) FavoriteEventsByHash(ctx context.Context, phoneHash string) ([]RawEvent, error) {
	query := url.Values{}
	query.Set("phone_hash", phoneHash)

	var envelope eventsEnvelope
	if err := c.getJSON(ctx, "favoritesByHash", "/favorite_events_by_hash", query, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// StarEvent marks an event as a favorite. The upstream has no event IDs,
// so the event travels as its name plus metadata.
func (c *Client) StarEvent(ctx context.Context, phoneNumber, eventName string, meta EventMetadata) error {
	return c.postJSON(ctx, "starEvent", "/star_event", starEventRequest{
		PhoneNumber:   phoneNumber,
		Event:         eventName,
		EventMetadata: meta,
	}, nil)
}

// UnstarEvent removes an event from the user's favorites. The metadata
// alone identifies the event on this route.
func (c *Client) UnstarEvent(ctx context.Context, phoneNumber string, meta EventMetadata) error {
	return c.postJSON(ctx, "unstarEvent", "/unstar_event", unstarEventRequest{
		PhoneNumber:   phoneNumber,
		EventMetadata: meta,
	}, nil)
}
