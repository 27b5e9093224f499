package mock

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewBearerToken creates an HS256 signed token expiring after expiry (negative values yield expired tokens).
func NewBearerToken(subject string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": "mock",
		"sub": subject,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte("mock-secret"))
}
