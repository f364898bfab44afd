package model

// Role tags assigned by the auth backend.
const (
	// RoleUser is the placeholder role given to accounts created through an
	// OAuth provider before an explicit role has been selected.
	RoleUser         = "USER"
	RoleOwner        = "OWNER"
	RoleDoctor       = "DOCTOR"
	RoleAssistant    = "ASSISTANT"
	RoleReceptionist = "RECEPTIONIST"
)

// User represents the identity record returned by the auth backend
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
	Avatar    string   `json:"avatar,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// FullName returns the user's display name
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user carries the given role tag
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterData is the payload for creating a new account
type RegisterData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// ProfileUpdate carries the user fields that can be changed after signup.
// Zero-valued fields are omitted so the backend merges only what was set.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}
