package domain

import "time"

// User represents a registered user of the bank in the domain.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PasswordHash string `json:"-"` // bcrypt hash; empty for Google-only users
	GoogleID     string `json:"-"` // Subject claim from Google; empty for password users
	IsActive     bool   `json:"isActive"`
	AuditFields

	// Refresh token state; only the SHA256 hash is ever stored.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// FullName returns the display name used in transfer results and statements.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// GoogleUserInfo holds the identity fields returned by Google's userinfo
// endpoint during the OAuth sign-in flow.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}
