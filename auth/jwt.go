package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vidtube/errs"
)

// TokenManager issues and verifies the HS256 bearer tokens that carry the
// actor identity between login and subsequent requests.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager returns a TokenManager signing with the given secret.
// Tokens expire after ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue returns a signed token for the given user id.
func (tm *TokenManager) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token and returns the user id it carries.
// Anything wrong with the token comes back as an EUNAUTHORIZED error.
func (tm *TokenManager) Verify(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Unexpected signing method.")
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token.")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token claims.")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token subject.")
	}
	return userID, nil
}
