package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/auth"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Nom          string     `json:"nom"`
	Prenom       string     `json:"prenom"`
	Role         auth.Role  `json:"role"`
	HopitalID    *uuid.UUID `json:"hopital_id"`
	Specialite   *string    `json:"specialite,omitempty"`
	Telephone    *string    `json:"telephone,omitempty"`
	Actif        bool       `json:"actif"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal is the identity carried in this user's tokens.
func (u *User) Principal() auth.Principal {
	return auth.Principal{ID: u.ID, Email: u.Email, Role: u.Role, HospitalID: u.HopitalID}
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	Email      *string    `json:"email"`
	Password   *string    `json:"password"`
	Nom        *string    `json:"nom"`
	Prenom     *string    `json:"prenom"`
	Role       *string    `json:"role"`
	HopitalID  *uuid.UUID `json:"hopital_id"`
	Specialite *string    `json:"specialite"`
	Telephone  *string    `json:"telephone"`
	Actif      *bool      `json:"actif"`
}

type Filter struct {
	HopitalID *uuid.UUID
	Role      auth.Role
	Search    string
	Actif     *bool
}

type LoginRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	HopitalID *uuid.UUID `json:"hopital_id"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
