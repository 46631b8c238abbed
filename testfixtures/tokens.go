package testfixtures

import (
	"time"

	"calendo/utils"

	"github.com/golang-jwt/jwt"
)

// Token signs an HS256 bearer token for subject with the key the auth
// middleware validates against.
func Token(subject, role string, ttl time.Duration) (string, error) {
	key, err := utils.SigningKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
