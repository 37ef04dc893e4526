package model

import "time"

// User represents a player account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Points    int       `json:"points"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location is an uploaded reference point others guess against.
type Location struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationPatch carries the optional fields of a location update.
type LocationPatch struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   *string  `json:"address,omitempty"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p LocationPatch) Empty() bool {
	return p.Latitude == nil && p.Longitude == nil && p.Address == nil && p.ImageURL == nil
}

// UserPatch carries the editable profile fields of a user. Points and the
// password are not part of it.
type UserPatch struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.AvatarURL == nil
}

// UserSummary is the public projection of a user embedded in guesses and logs.
type UserSummary struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Guess is an immutable scored attempt at a location.
type Guess struct {
	ID               string      `json:"id"`
	GuessedLatitude  float64     `json:"guessedLatitude"`
	GuessedLongitude float64     `json:"guessedLongitude"`
	Address          string      `json:"address"`
	ErrorDistance    float64     `json:"errorDistance"`
	OwnerID          string      `json:"ownerId"`
	LocationID       string      `json:"locationId"`
	CreatedAt        time.Time   `json:"createdAt"`
	Owner            UserSummary `json:"owner"`
}

// ActionType enumerates tracked user interactions.
type ActionType string

const (
	ActionClick          ActionType = "CLICK"
	ActionScroll         ActionType = "SCROLL"
	ActionAddedValue     ActionType = "ADDED_VALUE"
	ActionChangedValue   ActionType = "CHANGED_VALUE"
	ActionGuessSubmitted ActionType = "GUESS_SUBMITTED"
)

// ComponentType names the UI element an action happened on.
type ComponentType string

const (
	ComponentButton ComponentType = "BUTTON"
	ComponentInput  ComponentType = "INPUT"
	ComponentLink   ComponentType = "LINK"
	ComponentMap    ComponentType = "MAP"
)

// ActionLog records a single user interaction.
type ActionLog struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Action        ActionType     `json:"action"`
	ComponentType *ComponentType `json:"componentType,omitempty"`
	NewValue      *string        `json:"newValue,omitempty"`
	Location      string         `json:"location"`
	CreatedAt     time.Time      `json:"createdAt"`
	User          UserSummary    `json:"user"`
}
