// Package entity holds the gateway's domain types: user profiles as the
// public and self-service APIs see them, and the domain errors shared by
// the use cases.
package entity

import "encoding/json"

// PublicProfileColumns is the exact column list exposed by the public user
// API.
const PublicProfileColumns = "id, full_name, avatar_url, claims, bio"

// PublicProfile is what anyone may see about a user. Nullable columns stay
// null in JSON.
type PublicProfile struct {
	ID        string          `json:"id"`
	FullName  *string         `json:"full_name"`
	AvatarURL *string         `json:"avatar_url"`
	Claims    json.RawMessage `json:"claims"`
	Bio       json.RawMessage `json:"bio"`
}

// MarshalJSON keeps absent json columns as null instead of failing on an
// empty RawMessage.
func (p PublicProfile) MarshalJSON() ([]byte, error) {
	type alias PublicProfile
	a := alias(p)
	if len(a.Claims) == 0 {
		a.Claims = json.RawMessage("null")
	}
	if len(a.Bio) == 0 {
		a.Bio = json.RawMessage("null")
	}
	return json.Marshal(a)
}

// ProfileState is the part of a profile that follows the signed-in user
// around the site: the preferred locale and the deactivation flag.
type ProfileState struct {
	ID          string  `json:"id"`
	Locale      *string `json:"locale"`
	Deactivated bool    `json:"deactivated"`
}

// DeletedUser is the archive row written before an account is removed.
type DeletedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
