package upstream

// Wire types for the upstream SproutMe API. List and profile responses
// arrive wrapped in a data envelope; flag-style responses are flat.

// RawEvent is an event row as the upstream returns it. Rows can arrive
// with any field missing; defaulting happens at ingestion.
type RawEvent struct {
	Name       string `json:"name"`
	Venue      string `json:"venue"`
	Date       string `json:"date"`
	RawDate    string `json:"raw_date"`
	TicketInfo string `json:"ticket_info"`
	Organizer  string `json:"organizer"`
	Genre      string `json:"genre"`
	EventURL   string `json:"event_url"`
	IsFavorite bool   `json:"is_favorite"`
}

// ValidatePhoneResult is the response to a phone validation call.
type ValidatePhoneResult struct {
	Valid bool `json:"valid"`
	// PhoneNumber is the canonical formatting of the submitted number.
	PhoneNumber string `json:"phone_number"`
}

// VerifyCodeResult is the response to a code verification call.
type VerifyCodeResult struct {
	Valid       bool   `json:"valid"`
	PhoneNumber string `json:"phone_number"`
}

// CheckUserResult reports whether a user record exists and its name.
// Decoded out of the check_user envelope; not a wire type itself.
type CheckUserResult struct {
	Exists bool
	Name   string
}

// Profile is the upstream's user record.
type Profile struct {
	Name      string   `json:"name"`
	GenreList []string `json:"genre_list"`
	CityList  []string `json:"city_list"`
}

// EventMetadata rides along with star calls so the upstream can store a
// self-contained favorite record. Unstar calls identify the event by
// this metadata alone, so it carries the name too.
type EventMetadata struct {
	Name    string `json:"name"`
	Venue   string `json:"venue"`
	Date    string `json:"date"`
	RawDate string `json:"raw_date"`
	Genre   string `json:"genre"`
}

// eventsEnvelope wraps every event list response. The success flag is
// only sent on the by-hash route and the phone number only on the
// scoped events route; decoding tolerates both being absent.
type eventsEnvelope struct {
	Success     bool       `json:"success"`
	Data        []RawEvent `json:"data"`
	PhoneNumber string     `json:"phoneNumber"`
}

type checkUserResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Name string `json:"name"`
	} `json:"data"`
}

type profileEnvelope struct {
	Data Profile `json:"data"`
}

type validatePhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	Region      string `json:"region"`
}

type phoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type verifyCodeRequest struct {
	PhoneNumber      string `json:"phone_number"`
	VerificationCode string `json:"verification_code"`
}

type updateNameRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

type updateGenresRequest struct {
	PhoneNumber string   `json:"phone_number"`
	GenreList   []string `json:"genre_list"`
}

type updateCitiesRequest struct {
	PhoneNumber string   `json:"phone_number"`
	CityList    []string `json:"city_list"`
}

type starEventRequest struct {
	PhoneNumber   string        `json:"phone_number"`
	Event         string        `json:"event"`
	EventMetadata EventMetadata `json:"event_metadata"`
}

type unstarEventRequest struct {
	PhoneNumber   string        `json:"phone_number"`
	EventMetadata EventMetadata `json:"event_metadata"`
}

type getNameRequest struct {
	PhoneHash string `json:"phone_hash"`
}

type getNameResponse struct {
	Name string `json:"name"`
}
