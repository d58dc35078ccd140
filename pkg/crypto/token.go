package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	DefaultTokenLength = 32 // 256 bits
)

// TokenPair couples a raw token with the hash that storage keeps. The
// raw value goes to the client; only the hash is ever persisted.
type TokenPair struct {
	Token string
	Hash  string
}

// GenerateToken returns a random URL-safe token of byteLength random
// bytes. Non-positive lengths fall back to the default.
func GenerateToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateHashedToken returns a fresh token together with its hash.
func GenerateHashedToken(byteLength int) (*TokenPair, error) {
	token, err := GenerateToken(byteLength)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Token: token,
		Hash:  HashToken(token),
	}, nil
}

// VerifyToken checks a raw token against a stored hash in constant time.
func VerifyToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, errors.New("token and hash cannot be empty")
	}

	tokenHash := HashToken(token)

	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(storedHash)) == 1, nil
}

// HashToken derives the storage key for an opaque bearer token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
