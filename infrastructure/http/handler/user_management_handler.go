package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/middleware"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/response"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/validator"
)

type UserManagementHandler struct {
	userManagementUseCase inbound.UserManagementUseCase
	validator             *validator.Validator
}

func NewUserManagementHandler(userManagementUseCase inbound.UserManagementUseCase, v *validator.Validator) *UserManagementHandler {
	return &UserManagementHandler{
		userManagementUseCase: userManagementUseCase,
		validator:             v,
	}
}

// ListUsers handles GET /api/users (admin).
func (h *UserManagementHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	result, err := h.userManagementUseCase.ListUsers(r.Context(), page, perPage)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", listFields(result))
}

// SearchUsers handles GET /api/users/search?q= (admin).
func (h *UserManagementHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	result, err := h.userManagementUseCase.SearchUsers(r.Context(), r.URL.Query().Get("q"), page, perPage)
	if err != nil {
		response.FromError(w, err)
		return
	}

	fields := listFields(result)
	fields["query"] = result.Query
	response.SuccessFields(w, http.StatusOK, "", fields)
}

// UsersByRole handles GET /api/users/by-role/{role} (admin).
func (h *UserManagementHandler) UsersByRole(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]

	users, err := h.userManagementUseCase.UsersByRole(r.Context(), role)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{
		"users": users,
		"count": len(users),
		"role":  role,
	})
}

// UserByEmail handles GET /api/users/by-email/{email} (admin).
func (h *UserManagementHandler) UserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.userManagementUseCase.UserByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{"user": user})
}

// Stats handles GET /api/users/stats (admin).
func (h *UserManagementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userManagementUseCase.Stats(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{"stats": stats})
}

// GetUser handles GET /api/users/{id}.
func (h *UserManagementHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}

	user, err := h.userManagementUseCase.GetUser(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{"user": user})
}

// UpdateUser handles PUT /api/users/{id}.
func (h *UserManagementHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	h.update(w, r, actor, id)
}

// DeleteUser handles DELETE /api/users/{id} (admin).
func (h *UserManagementHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.userManagementUseCase.DeleteUser(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

// Me handles GET /api/users/me.
func (h *UserManagementHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentIdentity(r.Context())
	if !ok {
		response.FromError(w, apperror.ErrMissingToken)
		return
	}

	user, err := h.userManagementUseCase.GetUser(r.Context(), actor, actor.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "", response.Fields{"user": user})
}

// UpdateMe handles PUT /api/users/me. A role in the body is dropped even
// for admins.
func (h *UserManagementHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentIdentity(r.Context())
	if !ok {
		response.FromError(w, apperror.ErrMissingToken)
		return
	}
	h.update(w, r, entity.Identity{UserID: actor.UserID, Email: actor.Email, Role: entity.RoleUser}, actor.UserID)
}

func (h *UserManagementHandler) update(w http.ResponseWriter, r *http.Request, actor entity.Identity, id int64) {
	var req inbound.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsEmpty() {
		response.BadRequest(w, "Data to update is not provided")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		response.FromError(w, err)
		return
	}

	user, err := h.userManagementUseCase.UpdateUser(r.Context(), actor, id, req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.SuccessFields(w, http.StatusOK, "User updated successfully", response.Fields{"user": user})
}

// target resolves the caller and the {id} path variable.
func (h *UserManagementHandler) target(w http.ResponseWriter, r *http.Request) (entity.Identity, int64, bool) {
	actor, ok := middleware.CurrentIdentity(r.Context())
	if !ok {
		response.FromError(w, apperror.ErrMissingToken)
		return entity.Identity{}, 0, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return entity.Identity{}, 0, false
	}
	return actor, id, true
}

func pageParams(r *http.Request) (int, int) {
	page, perPage := 1, inbound.DefaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		perPage = v
	}
	return page, perPage
}

func listFields(result *inbound.ListUsersResponse) response.Fields {
	return response.Fields{
		"users":        result.Users,
		"total":        result.Pagination.Total,
		"pages":        result.Pagination.TotalPages,
		"current_page": result.Pagination.Page,
		"per_page":     result.Pagination.PerPage,
	}
}
