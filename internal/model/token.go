package model

import "github.com/google/uuid"

// TokenManager mints and validates session tokens for the transport layer.
type TokenManager interface {
	GenerateSessionToken(userID uuid.UUID, key VerifyKey) (string, error)
	ParseSessionToken(token string) (userID uuid.UUID, key VerifyKey, err error)
}
