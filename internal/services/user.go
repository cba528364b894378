package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"

	"github.com/cliptube/apiserver/internal/apperr"
	"github.com/cliptube/apiserver/internal/store"
	"github.com/cliptube/apiserver/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Uploader stores profile media and yields a public content URL per object.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload carries one file received at the transport boundary.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// UserService encapsulates account use-cases outside the session lifecycle:
// registration with media upload and sanitized lookups for the auth gate.
type UserService struct {
	repo     UserRepository
	uploader Uploader
}

func NewUserService(repo UserRepository, uploader Uploader) *UserService {
	return &UserService{repo: repo, uploader: uploader}
}

// Register validates the input, uploads the profile media, and creates the
// user. A failed avatar upload aborts registration before any row exists;
// a failed cover image upload does not. The returned user is sanitized.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.TrimSpace(input.Email)

	if input.FullName == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return types.User{}, fmt.Errorf("%w: all fields are required", apperr.ErrValidation)
	}
	if !emailPattern.MatchString(input.Email) {
		return types.User{}, fmt.Errorf("%w: invalid email format", apperr.ErrValidation)
	}
	if input.Avatar == nil {
		return types.User{}, fmt.Errorf("%w: avatar image is required", apperr.ErrValidation)
	}

	for _, identifier := range []string{input.Username, input.Email} {
		if _, err := s.repo.FindByIdentifier(ctx, identifier); err == nil {
			return types.User{}, fmt.Errorf("%w: username or email already registered", apperr.ErrConflict)
		} else if !errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("%w: checking existing user: %v", apperr.ErrUpstream, err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: hashing password: %v", apperr.ErrUpstream, err)
	}

	avatarKey := mediaKey("avatars", input.Avatar.Filename)
	avatarURL, err := s.uploader.Upload(ctx, avatarKey, input.Avatar.Reader, input.Avatar.Size, input.Avatar.ContentType)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: uploading avatar: %v", apperr.ErrUpstream, err)
	}

	var coverKey, coverURL string
	if input.CoverImage != nil {
		coverKey = mediaKey("covers", input.CoverImage.Filename)
		coverURL, err = s.uploader.Upload(ctx, coverKey, input.CoverImage.Reader, input.CoverImage.Size, input.CoverImage.ContentType)
		if err != nil {
			// Cover image is optional; the account is created without it.
			log.Printf("cover image upload failed for %s: %v", input.Username, err)
			coverKey, coverURL = "", ""
		}
	}

	created, err := s.repo.Create(ctx, types.User{
		Username:      input.Username,
		Email:         input.Email,
		FullName:      input.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  string(hashed),
	})
	if err != nil {
		s.discard(ctx, avatarKey)
		s.discard(ctx, coverKey)
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, fmt.Errorf("%w: username or email already registered", apperr.ErrConflict)
		}
		return types.User{}, fmt.Errorf("%w: creating user: %v", apperr.ErrUpstream, err)
	}

	return created.Sanitized(), nil
}

// GetByID resolves a user identity for the auth gate. The result never
// carries the password hash or the stored refresh token.
func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.ErrUnauthorized
		}
		return types.User{}, fmt.Errorf("%w: looking up user: %v", apperr.ErrUpstream, err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		log.Printf("failed to delete orphaned object %s: %v", key, err)
	}
}

func mediaKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return prefix + "/" + uuid.NewString() + ext
}
