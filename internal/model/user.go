// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user account can hold. The role on the user row is the single
// source of truth for admin access — there is no separate permission list,
// and no code path may special-case a particular email address.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the enumerated account roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents a registered account.
//
// A user authenticates through exactly one path per login attempt: either
// the password hash (password accounts) or a Google identity token. Google
// accounts created by auto-provisioning have an empty PasswordHash; a
// password account that later signs in with Google gets GoogleID linked to
// the same row.
//
// Email is the login key and is stored lowercase-trimmed; the service layer
// normalizes it on every write and lookup.
//
// PasswordHash is json:"-" so the hash can never leak through an API
// response, no matter which handler serializes the user.
type User struct {
	ID           string    `json:"id"        db:"id"`
	FullName     string    `json:"fullName"  db:"full_name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GoogleID     string    `json:"-"         db:"google_id"`  // Google's stable subject ID (empty for password-only accounts)
	ImagePath    string    `json:"imagePath" db:"image_path"` // relative path of the uploaded profile image (may be empty)
	Role         string    `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
