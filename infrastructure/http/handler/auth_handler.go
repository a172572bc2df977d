package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/middleware"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/response"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/validator"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
	validator   *validator.Validator
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, v *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		validator:   v,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		response.FromError(w, err)
		return
	}

	res, err := h.authUseCase.Register(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusCreated, "User created successfully", authFields(res.User, res.Token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Email and password are required")
		return
	}

	res, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "Login successful", authFields(res.User, res.Token))
}

// Refresh handles POST /api/auth/refresh. The bearer token may be expired
// but its signature must still verify.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	issued, err := h.authUseCase.Refresh(r.Context(), token)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "Token refreshed successfully", tokenFields(issued))
}

// Verify handles POST /api/auth/verify and echoes the decoded claims.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	claims, err := h.authUseCase.Verify(r.Context(), token)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "Token is valid", response.Fields{
		"user_data": claims,
	})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CurrentIdentity(r.Context())
	if !ok {
		response.FromError(w, apperror.ErrMissingToken)
		return
	}

	user, err := h.authUseCase.Profile(r.Context(), identity.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{"user": user})
}

// ChangePassword handles PUT /api/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CurrentIdentity(r.Context())
	if !ok {
		response.FromError(w, apperror.ErrMissingToken)
		return
	}

	var req inbound.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.authUseCase.ChangePassword(r.Context(), identity.UserID, req); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Password changed successfully", nil)
}

func authFields(user interface{}, token valueobject.IssuedToken) response.Fields {
	fields := tokenFields(token)
	fields["user"] = user
	return fields
}

func tokenFields(token valueobject.IssuedToken) response.Fields {
	return response.Fields{
		"token":      token.Token,
		"token_type": token.TokenType,
		"expires_at": token.ExpiresAt,
	}
}

// decodeJSON reads the request body into dst, answering 400 when the body
// is not a JSON object.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil {
		response.BadRequest(w, "No data provided")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
