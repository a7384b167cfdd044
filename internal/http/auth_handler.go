package api

import (
	"encoding/json"
	"net/http"

	"inquiry-system/internal/domain/user"
	"inquiry-system/internal/platform/apperr"
)

type authRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type authResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// @Summary     Register a member account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request  body      authRequest  true  "Credentials"
// @Success     201      {object}  authResponse
// @Failure     400      {object}  map[string]string  "invalid body or email taken"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /api/v1/auth/register [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	u, err := h.userSvc.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}
	h.writeToken(w, http.StatusCreated, u)
}

// @Summary     Log in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request  body      authRequest  true  "Credentials"
// @Success     200      {object}  authResponse
// @Failure     401      {object}  map[string]string  "invalid credentials"
// @Router      /api/v1/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	u, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, u)
}

func (h *Handler) writeToken(w http.ResponseWriter, status int, u *user.User) {
	token, err := h.jwtMgr.Generate(u.ID, u.Role)
	if err != nil {
		errorResponse(w, apperr.Internal("token_error", "could not issue token", err))
		return
	}
	writeJSON(w, status, authResponse{User: u, Token: token})
}
