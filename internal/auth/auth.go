// Package auth implements the demo-grade session scheme: a shared-salt
// SHA-256 password hash and an unsigned, reversible base64 session token.
// The token provides session continuity only; it is trivially forgeable and
// is not a security boundary.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

// passwordSalt is a single shared constant, not a per-user salt.
const passwordSalt = "chatboot-demo-salt-v1"

// TokenTTL is the window within which an issued token is accepted.
const TokenTTL = 30 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(passwordSalt + password))
	return hex.EncodeToString(sum[:])
}

func CheckPassword(password, hash string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

type tokenPayload struct {
	UserID   string `json:"userId"`
	IssuedAt int64  `json:"issuedAt"`
}

// IssueToken encodes {userId, issuedAt} as base64 JSON.
func IssueToken(userID string) string {
	payload, _ := json.Marshal(tokenPayload{
		UserID:   userID,
		IssuedAt: time.Now().UnixMilli(),
	})
	return base64.StdEncoding.EncodeToString(payload)
}

// VerifyToken returns the user id carried by the token. A token is accepted
// iff it is present, decodable, and was issued within the TTL window.
func VerifyToken(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", ErrInvalidToken
	}
	if payload.UserID == "" {
		return "", ErrInvalidToken
	}
	issued := time.UnixMilli(payload.IssuedAt)
	if time.Since(issued) > TokenTTL {
		return "", ErrTokenExpired
	}
	return payload.UserID, nil
}
