package token

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated principal encoded into a session token.
// It is immutable once issued: a changed identity requires a new token,
// never an in-place patch.
type Identity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities"`
	Country      string   `json:"country"`
}

// claims is the only supported token claims shape for this service.
// Issued-at and expiry live in RegisteredClaims; everything else is the
// identity payload verbatim.
type claims struct {
	jwt.RegisteredClaims
	Identity
}
