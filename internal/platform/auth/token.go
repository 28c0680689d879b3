package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a bearer token's payload cannot be read.
var ErrMalformedToken = errors.New("malformed token")

// Identity is the user record recovered from a bearer token.
type Identity struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

// Expired reports whether the token this identity came from has lapsed.
// Identities without an expiry never expire.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// DecodeToken reads the identity claims out of a bearer token without
// verifying its signature; the backend does that on every request.
//
// Missing claims fall back to defaults: id 0, empty name and email, role User.
func DecodeToken(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return identityFromClaims(claims), nil
}

func identityFromClaims(claims jwt.MapClaims) Identity {
	id := Identity{
		UserID:   int64Claim(claims, "nameid", "sub"),
		Username: stringClaim(claims, "name", "unique_name"),
		Email:    stringClaim(claims, "email"),
		Role:     stringClaim(claims, "role"),
	}
	if id.Role == "" {
		id.Role = DefaultRole
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id
}

// stringClaim returns the first non-empty claim among names. Array claims
// (multi-role tokens) yield their first string element.
func stringClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func int64Claim(claims jwt.MapClaims, names ...string) int64 {
	for _, name := range names {
		switch v := claims[name].(type) {
		case float64:
			return int64(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

// IssueToken signs an HS256 token carrying id with the same claim names
// DecodeToken reads. A non-positive ttl issues a token without expiry.
func IssueToken(id Identity, key []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"nameid": strconv.FormatInt(id.UserID, 10),
		"name":   id.Username,
		"email":  id.Email,
		"role":   id.Role,
		"iat":    now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
