package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenDuration = 30 * time.Minute

var ErrSecretNotConfigured = errors.New("signing secret is not configured")

// Issuer mints and validates signed session tokens. An empty secret is a
// deployment fault surfaced per request, not at construction.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	duration time.Duration
}

func NewIssuer(secret, issuer, audience string, duration time.Duration) *Issuer {
	if duration <= 0 {
		duration = defaultTokenDuration
	}

	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		duration: duration,
	}
}

// Issue signs an HS256 token for the account with a fresh jti. The expiry
// is always issued-at plus the configured duration.
func (i *Issuer) Issue(account Account) (IssuedToken, error) {
	if len(i.secret) == 0 {
		return IssuedToken{}, ErrSecretNotConfigured
	}

	jti, err := uuid.NewRandom()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate token id: %w", err)
	}

	now := time.Now().UTC()
	expires := now.Add(i.duration)

	var audience jwt.ClaimStrings
	if i.audience != "" {
		audience = jwt.ClaimStrings{i.audience}
	}

	claims := Claims{
		Username: account.Username,
		Role:     account.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Audience:  audience,
			Subject:   account.ID,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{Token: signed, Expiration: expires, UserID: account.ID}, nil
}

// Parse validates a serialized token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
