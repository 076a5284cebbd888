package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleManager  = "MANAGER"
)

// Media is an image reference (venue photo, avatar, banner).
type Media struct {
	URL string `json:"url" validate:"required,url,max=300"`
	Alt string `json:"alt" validate:"max=120"`
}

// User represents a row in the `users` table. It is used by the repository
// layer; handlers expose it through Profile so the password hash never
// leaves the service.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name (unique profile handle)
	Email        string    // users.email (unique, lower-cased)
	PasswordHash string    // users.password_hash
	Role         string    // users.role (CUSTOMER or MANAGER)
	Bio          string    // users.bio
	Avatar       *Media    // users.avatar_url / avatar_alt (nullable)
	Banner       *Media    // users.banner_url / banner_alt (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// VenueManager reports whether the user may create and manage venues.
func (u User) VenueManager() bool { return u.Role == RoleManager }

// Profile is the public shape of a user.
type Profile struct {
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Bio          string        `json:"bio,omitempty"`
	Avatar       *Media        `json:"avatar,omitempty"`
	Banner       *Media        `json:"banner,omitempty"`
	VenueManager bool          `json:"venueManager"`
	Count        *ProfileCount `json:"_count,omitempty"`
}

// ProfileCount carries the optional venue and booking totals of a profile.
type ProfileCount struct {
	Venues   int `json:"venues"`
	Bookings int `json:"bookings"`
}

// Profile returns the public view of u.
func (u User) Profile() Profile {
	return Profile{
		Name:         u.Name,
		Email:        u.Email,
		Bio:          u.Bio,
		Avatar:       u.Avatar,
		Banner:       u.Banner,
		VenueManager: u.VenueManager(),
	}
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,max=20,username"`
	Email        string `json:"email" validate:"required,email,max=190"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	VenueManager bool   `json:"venueManager"`
	Bio          string `json:"bio" validate:"max=160"`
	Avatar       *Media `json:"avatar" validate:"omitempty"`
	Banner       *Media `json:"banner" validate:"omitempty"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a raw refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ProfileUpdate is the body of PUT /v1/profiles/:name. Nil fields are left unchanged.
type ProfileUpdate struct {
	Bio          *string `json:"bio" validate:"omitempty,max=160"`
	Avatar       *Media  `json:"avatar" validate:"omitempty"`
	Banner       *Media  `json:"banner" validate:"omitempty"`
	VenueManager *bool   `json:"venueManager"`
}
