package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/model"
)

// Claims are the session token claims: the user ID and its verify key, so
// the transport layer can resolve the caller without a store round-trip.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	VerifyKey string    `json:"verify_key"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  string
	sessionTTL time.Duration
}

const defaultSessionTTL = 24 * time.Hour

// NewJWT creates a session token manager with the provided secret key.
func NewJWT(secretKey string, sessionTTL time.Duration) model.TokenManager {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &JWT{secretKey: secretKey, sessionTTL: sessionTTL}
}

// GenerateSessionToken mints a signed token for a resolved identity.
func (j *JWT) GenerateSessionToken(userID uuid.UUID, key model.VerifyKey) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.sessionTTL)),
		},
		UserID:    userID,
		VerifyKey: string(key),
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseSessionToken validates the token and extracts the caller identity.
func (j *JWT) ParseSessionToken(tokenString string) (uuid.UUID, model.VerifyKey, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("session token is invalid")
	}
	if !model.VerifyKey(claims.VerifyKey).Valid() {
		return uuid.Nil, "", fmt.Errorf("session token carries a malformed verify key")
	}
	return claims.UserID, model.VerifyKey(claims.VerifyKey), nil
}
