package domain

import "time"

// UserSettings holds per-user client state the server persists across
// devices: the theme flag and the last filter selection.
type UserSettings struct {
	PhoneHash string `json:"phone_hash"`

	// DarkMode defaults to true for new users.
	DarkMode bool `json:"dark_mode"`

	// Filters is the last saved filter selection, restored on next visit.
	// Nil means nothing saved yet.
	Filters *FilterState `json:"filters,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserSettings creates settings with defaults.
func NewUserSettings(phoneHash string) *UserSettings {
	return &UserSettings{
		PhoneHash: phoneHash,
		DarkMode:  true,
		UpdatedAt: time.Now(),
	}
}
