package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens with a bad signature, malformed
// payload, or an elapsed expiry.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager mints and validates the stateless bearer tokens used for
// authentication. A token carries the user id and a fixed-window expiry;
// there is no server-side revocation, so rotating Secret is the only way
// to invalidate outstanding tokens early.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl}
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for userID valid for the configured TTL.
func (m *JWTManager) GenerateToken(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseToken validates signature and expiry and returns the claims.
// Never trusts an unverified payload.
func (m *JWTManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken re-verifies the old token and issues a fresh one for the
// same subject with a new full TTL window. A holder that keeps refreshing
// before expiry can extend its session indefinitely.
func (m *JWTManager) RefreshToken(tokenStr string) (string, time.Time, error) {
	claims, err := m.ParseToken(tokenStr)
	if err != nil {
		return "", time.Time{}, err
	}
	return m.GenerateToken(claims.UserID)
}
