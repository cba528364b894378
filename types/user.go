package types

import "time"

// User represents an account in the system.
// It contains identity, profile media, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Username is the unique login name chosen by the user,
	// stored lowercase.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// FullName is the user's display name.
	FullName string `json:"full_name" db:"full_name"`

	// AvatarURL points at the uploaded avatar image. Always set.
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	// CoverImageURL points at the uploaded cover image, if any.
	CoverImageURL string `json:"cover_image_url,omitempty" db:"cover_image_url"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// RefreshToken is the single currently valid refresh token for this
	// user, or nil when no session is live. Overwritten on every
	// issuance, cleared on logout. Never exposed in API responses.
	RefreshToken *string `json:"-" db:"refresh_token"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Sanitized returns a copy safe to hand outside the auth core: the password
// hash and the stored refresh token are zeroed.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return u
}
