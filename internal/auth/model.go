package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names a small fixed set of authorization levels. Beyond the admin
// flag there is no permission model.
type Role struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

var (
	RoleDefault = Role{Name: "Default"}
	RoleAdmin   = Role{Name: "Admin", IsAdmin: true}
)

// Account is the stored user record. Hash and salt are never serialized and
// never mutated after creation.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims is the session token claim set: registered claims plus the
// username and role name carried for the client's benefit.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is the observable result of a successful authentication.
type IssuedToken struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	UserID     string    `json:"userId"`
}
