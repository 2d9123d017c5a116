// Package token signs and verifies the session tokens issued by the
// platform's identity service. The engine only verifies; issuing lives
// upstream, Generate exists for tests and local tooling.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid_token")

// Claims carries the platform session claims. Role lets middleware make
// coarse decisions without a database round trip.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// Generate signs a session token for userID.
func Generate(secret string, userID snowflake.ID, role, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token: empty secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID.String(),
		Role:   role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies tokenString and returns the caller identity. It rejects
// expired tokens, bad signatures, and non-HMAC algorithms.
func Parse(secret, tokenString string) (snowflake.ID, string, error) {
	if secret == "" {
		return 0, "", errors.New("token: empty secret")
	}
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return 0, "", ErrInvalidToken
	}

	raw := claims.UserID
	if raw == "" {
		raw = claims.Subject
	}
	userID, err := snowflake.ParseString(raw)
	if err != nil || userID == 0 {
		return 0, "", ErrInvalidToken
	}
	return userID, claims.Role, nil
}
