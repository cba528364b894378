package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/cliptube/apiserver/internal/apperr"
	"github.com/cliptube/apiserver/internal/store"
	"github.com/cliptube/apiserver/internal/token"
	"github.com/cliptube/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (types.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, refreshToken *string) error
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionService owns the login, rotation, and logout lifecycle. A user has
// at most one live refresh token, stored on the user row; every issuance
// overwrites it, which is what revokes the previous one.
type SessionService struct {
	repo   UserRepository
	signer *token.Signer
}

func NewSessionService(repo UserRepository, signer *token.Signer) *SessionService {
	return &SessionService{repo: repo, signer: signer}
}

// Authenticate verifies an identifier/password pair. The identifier is a
// username or an email; either is sufficient. Unknown identifier and wrong
// password are indistinguishable to the caller.
func (s *SessionService) Authenticate(ctx context.Context, identifier, password string) (types.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return types.User{}, fmt.Errorf("%w: identifier and password are required", apperr.ErrValidation)
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("%w: looking up user: %v", apperr.ErrUpstream, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, apperr.ErrInvalidCredentials
	}
	return user, nil
}

// IssuePair signs a new access/refresh pair and persists the refresh token
// on the user row before returning. Only the token column is written.
func (s *SessionService) IssuePair(ctx context.Context, userID int64) (TokenPair, error) {
	access, err := s.signer.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: signing access token: %v", apperr.ErrUpstream, err)
	}
	refresh, err := s.signer.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: signing refresh token: %v", apperr.ErrUpstream, err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, userID, &refresh); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, apperr.ErrSessionInvalid
		}
		return TokenPair{}, fmt.Errorf("%w: persisting refresh token: %v", apperr.ErrUpstream, err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges a valid, still-current refresh token for a new pair.
// The presented token must verify cryptographically AND equal the value
// stored on the user row; a token superseded by a later issuance or cleared
// by logout fails even though its signature is still good.
func (s *SessionService) Rotate(ctx context.Context, presented string) (TokenPair, types.User, error) {
	userID, err := s.signer.VerifyRefresh(presented)
	if err != nil {
		return TokenPair{}, types.User{}, apperr.ErrSessionInvalid
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, types.User{}, apperr.ErrSessionInvalid
		}
		return TokenPair{}, types.User{}, fmt.Errorf("%w: looking up user: %v", apperr.ErrUpstream, err)
	}

	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		return TokenPair{}, types.User{}, apperr.ErrSessionInvalid
	}

	pair, err := s.IssuePair(ctx, userID)
	if err != nil {
		return TokenPair{}, types.User{}, err
	}
	return pair, user, nil
}

// Terminate clears the stored refresh token, unconditionally revoking any
// outstanding refresh token for the user.
func (s *SessionService) Terminate(ctx context.Context, userID int64) error {
	if err := s.repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: clearing refresh token: %v", apperr.ErrUpstream, err)
	}
	return nil
}
