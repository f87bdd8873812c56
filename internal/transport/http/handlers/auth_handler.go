package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	userssvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/users"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/dto"
	httperrors "github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/errors"
)

type AuthHandler struct {
	users *userssvc.Service
	jwt   *authsvc.JWTManager
}

func NewAuthHandler(users *userssvc.Service, jwt *authsvc.JWTManager) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil || h.jwt == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password, req.DisplayName, enums.UserRole(req.Role))
	if err != nil {
		handleAuthError(w, err)
		return
	}

	h.writeTokens(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.users == nil || h.jwt == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	h.writeTokens(w, user)
}

// SetupTOTP enrolls (or re-enrolls) the authenticated user into two-factor
// login and returns the secret plus a QR code for the authenticator app.
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	enrollment, err := h.users.EnrollTOTP(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TOTPSetupResponse{
		Secret:    enrollment.Secret,
		URL:       enrollment.URL,
		QRDataURL: enrollment.QRDataURL,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, user userssvc.User) {
	token, expiresAt, err := h.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to issue access token")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  token,
		ExpiresInSec: maxInt64(0, int64(time.Until(expiresAt).Seconds())),
		Me:           toUserResponse(user),
	})
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, userssvc.ErrEmailTaken):
		writeConflict(w, "EMAIL_TAKEN", "email is already registered")
	case errors.Is(err, userssvc.ErrTOTPRequired):
		writeUnauthorized(w, "TOTP_REQUIRED", "one-time code required")
	case errors.Is(err, userssvc.ErrInvalidCredentials):
		writeUnauthorized(w, "UNAUTHORIZED", "invalid email or password")
	case errors.Is(err, userssvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toUserResponse(user userssvc.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TOTPEnabled: user.TOTPEnabled,
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
