package handlers

import (
	"net/http"
	"strings"

	"github.com/hongminglow/dbgate/internal/auth"
	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/http/respond"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/middleware"
	"github.com/hongminglow/dbgate/internal/models/dto"
)

// AuthHandler owns registration, login, logout and profile endpoints.
type AuthHandler struct {
	svc     *auth.Service
	log     logging.Logger
	limiter *middleware.IPLimiter
}

// NewAuthHandler constructs the handler. A nil limiter disables throttling of
// /register and /login.
func NewAuthHandler(svc *auth.Service, log logging.Logger, limiter *middleware.IPLimiter) *AuthHandler {
	return &AuthHandler{svc: svc, log: log, limiter: limiter}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /register", h.throttle(h.handleRegister))
	mux.Handle("POST /login", h.throttle(h.handleLogin))
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /profile", h.handleProfile)
	mux.HandleFunc("GET /profile/role", h.handleRole)
}

func (h *AuthHandler) throttle(fn http.HandlerFunc) http.Handler {
	if h.limiter == nil {
		return fn
	}
	return middleware.RateLimit(h.limiter)(fn)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	h.log.Info(r.Context(), "user registered", "user_id", user.ID, "username", user.Username)
	respond.JSON(w, http.StatusCreated, user)
}

// handleLogin accepts JSON or an OAuth2 password form.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			fail(w, r, h.log, common.ErrInvalidRequestBody)
			return
		}
		req.Username, req.Password = r.PostForm.Get("username"), r.PostForm.Get("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}

	token, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Revoke(r.Context(), bearerToken(r)); err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.Message(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleRole(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.RoleResponse{Role: user.Role})
}
