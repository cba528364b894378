// Package token signs and verifies the access/refresh JWT pair. The two
// kinds use distinct HMAC secrets, so a leaked access token can never be
// replayed as a refresh token.
package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed, forged, or wrong-kind tokens.
	ErrTokenInvalid = errors.New("token invalid")
)

// Signer issues and verifies both token kinds for user identities.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewSigner constructs a Signer with the given secrets and lifetimes.
func NewSigner(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	return &Signer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess produces a short-lived access token for the user.
func (s *Signer) IssueAccess(userID int64) (string, error) {
	return issue(userID, s.accessSecret, s.accessTTL)
}

// IssueRefresh produces a long-lived refresh token for the user.
func (s *Signer) IssueRefresh(userID int64) (string, error) {
	return issue(userID, s.refreshSecret, s.refreshTTL)
}

// VerifyAccess checks an access token and returns the embedded user ID.
func (s *Signer) VerifyAccess(tokenString string) (int64, error) {
	return verify(tokenString, s.accessSecret)
}

// VerifyRefresh checks a refresh token and returns the embedded user ID.
func (s *Signer) VerifyRefresh(tokenString string) (int64, error) {
	return verify(tokenString, s.refreshSecret)
}

func issue(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	// The jti keeps two tokens minted for the same user within the same
	// second from colliding; rotation relies on the new token differing
	// from the one it replaces.
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenString string, secret []byte) (int64, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || userID < 1 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
