package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/httpx"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *registerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required_without_all=Username Email"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

type sessionResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func newSessionResponse(s *Session) sessionResponse {
	return sessionResponse{
		ID:       s.User.ID,
		Name:     s.User.Name,
		Username: s.User.Username,
		Email:    s.User.Email,
		Token:    s.Token,
	}
}

type Handler struct {
	Service *Service
	Logger  *slog.Logger
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, err)
		return
	}
	sess, err := h.Service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCredential) {
			httpx.Message(w, http.StatusBadRequest, "Username or Email already exists")
			return
		}
		httpx.Internal(w, r, h.Logger, "register user", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "user registered", "user_id", sess.User.ID, "username", sess.User.Username)
	httpx.JSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, err)
		return
	}
	sess, err := h.Service.Login(r.Context(), LoginInput{
		Identifier: req.Identifier,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Message(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		httpx.Internal(w, r, h.Logger, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionResponse(sess))
}
