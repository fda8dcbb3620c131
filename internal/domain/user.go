package domain

import "time"

// Display name length bounds, enforced on update.
const (
	NameMinLength = 2
	NameMaxLength = 20
)

// User is an authenticated SproutMe user. Users are identified by phone
// number; the phone hash is the shareable stand-in for it.
type User struct {
	PhoneNumber string `json:"phone_number"`
	// PhoneHash is the lowercase hex SHA-256 digest of the phone number.
	// It is safe to put in URLs and is the key for shared favorites views.
	PhoneHash string `json:"phone_hash"`
	Name      string `json:"name"`

	GenreList []string `json:"genre_list"`
	CityList  []string `json:"city_list"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidName reports whether a display name is within bounds.
func ValidName(name string) bool {
	return len(name) >= NameMinLength && len(name) <= NameMaxLength
}

// ToggleString returns list with item added if absent or removed if
// present. Order of the remaining items is preserved and the input
// slice is never mutated.
func ToggleString(list []string, item string) []string {
	for i, v := range list {
		if v == item {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, item)
}
