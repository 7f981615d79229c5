package model

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// VerifyKey is the hex-encoded ed25519 public key identifying a caller.
// Requests arrive with the verify key already resolved by the transport
// layer; services treat it as an opaque credential.
type VerifyKey string

// RootAuthority marks internal calls made with the server's own authority,
// bypassing ownership checks. Stored nowhere; never accepted from the wire.
const RootAuthority VerifyKey = ""

// Valid reports whether the key decodes to an ed25519 public key.
func (k VerifyKey) Valid() bool {
	b, err := hex.DecodeString(string(k))
	return err == nil && len(b) == ed25519.PublicKeySize
}

// GenerateKeyPair creates a fresh ed25519 key pair, returning the hex seed
// (the private credential handle given back to the user) and its verify key.
func GenerateKeyPair() (seed string, key VerifyKey, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key pair: %w", err)
	}
	return hex.EncodeToString(priv.Seed()), VerifyKey(hex.EncodeToString(pub)), nil
}

// VerifyKeyForSeed derives the verify key from a hex seed.
func VerifyKeyForSeed(seed string) (VerifyKey, error) {
	b, err := hex.DecodeString(seed)
	if err != nil || len(b) != ed25519.SeedSize {
		return "", fmt.Errorf("malformed signing key seed")
	}
	priv := ed25519.NewKeyFromSeed(b)
	pub := priv.Public().(ed25519.PublicKey)
	return VerifyKey(hex.EncodeToString(pub)), nil
}
