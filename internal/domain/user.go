package domain

import "time"

// User roles. The role stored on the user record is the authoritative source
// for every access decision; roles embedded in tokens are a snapshot.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User statuses. Only active users may log in or pass the role guard.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account in the directory. Identity is federated through Google:
// GoogleID is the provider's stable subject id, unique across the directory.
// A record may exist without a GoogleID (pre-provisioned by an admin); the
// first Google login attaches the GoogleID to that record instead of creating
// a duplicate.
type User struct {
	ID          string     `json:"id"`
	GoogleID    string     `json:"-"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Picture     string     `json:"picture,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// PublicUser is the client-facing projection of a User. It never carries
// GoogleID or other internal fields.
type PublicUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
	Status  string `json:"status"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		Role:    u.Role,
		Status:  u.Status,
	}
}

// TokenPair holds an access and refresh token pair. Both are opaque bearer
// strings to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ValidRole reports whether r is a known role name.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// ValidStatus reports whether s is a known status name.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}
