package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/apiserver/internal/services"
	"github.com/cliptube/apiserver/internal/token"
	"github.com/cliptube/apiserver/types"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	maxMultipartMemory = 32 << 20

	formFieldFullName = "fullName"
	formFieldUsername = "username"
	formFieldEmail    = "email"
	formFieldPassword = "password"
	formFileAvatar    = "avatar"
	formFileCover     = "coverImage"
)

// AuthHandler provides the account endpoints: registration, login, token
// refresh, logout, and the current-user lookup.
type AuthHandler struct {
	userService *services.UserService
	sessions    *services.SessionService
	signer      *token.Signer
	events      *services.EventPublisher
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	userService *services.UserService,
	sessions *services.SessionService,
	signer *token.Signer,
	events *services.EventPublisher,
	accessTTL, refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		signer:      signer,
		events:      events,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// UserRouter registers account routes on the given router.
func UserRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/refresh", handler.Refresh)
	r.With(handler.RequireAuth).Post("/logout", handler.Logout)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth enforces access-token authentication and injects the subject
// into the request context. The token comes from the Authorization bearer
// header or the accessToken cookie; every verification failure collapses to
// a single unauthorized outcome here.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := accessTokenFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := h.signer.VerifyAccess(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), contextSubjectKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Register creates a new account from a multipart form carrying the profile
// fields plus the avatar (required) and cover image (optional) files.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := services.RegisterInput{
		FullName: r.FormValue(formFieldFullName),
		Username: r.FormValue(formFieldUsername),
		Email:    r.FormValue(formFieldEmail),
		Password: r.FormValue(formFieldPassword),
	}

	avatar, avatarFile, err := formUpload(r, formFileAvatar)
	if err == nil {
		defer avatarFile.Close()
		input.Avatar = avatar
	}

	cover, coverFile, err := formUpload(r, formFileCover)
	if err == nil {
		defer coverFile.Close()
		input.CoverImage = cover
	}

	user, err := h.userService.Register(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.events.Emit(r.Context(), services.EventRegistered, user)
	writeJSON(w, http.StatusCreated, UserResponse{User: user})
}

// Login verifies credentials and issues a token pair. The tokens travel in
// the response body and as http-only secure cookies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}

	user, err := h.sessions.Authenticate(r.Context(), identifier, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}

	pair, err := h.sessions.IssuePair(r.Context(), user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	h.events.Emit(r.Context(), services.EventLoggedIn, user)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh rotates a refresh token taken from the cookie or the JSON body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := refreshTokenFromRequest(r)
	if presented == "" {
		writeError(w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	pair, user, err := h.sessions.Rotate(r.Context(), presented)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout clears the stored refresh token and expires both cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.sessions.Terminate(r.Context(), userID); err != nil {
		writeAppError(w, err)
		return
	}

	h.clearSessionCookies(w)
	h.events.Emit(r.Context(), services.EventLoggedOut, user)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

type AuthResponse struct {
	User         types.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair services.TokenPair) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, pair.AccessToken, int(h.accessTTL.Seconds())))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, pair.RefreshToken, int(h.refreshTTL.Seconds())))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func accessTokenFromRequest(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errors.New("invalid authorization")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return "", errors.New("invalid authorization")
		}
		return tokenString, nil
	}

	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", errors.New("missing authorization")
	}
	return cookie.Value, nil
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

func formUpload(r *http.Request, field string) (*services.Upload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, file, nil
}
