package http_handlers

import (
	"net/http"
	"strings"

	"github.com/cercino/vointer/internal/application/auth"
	"github.com/cercino/vointer/internal/domain"
	"github.com/cercino/vointer/internal/logger"
	"github.com/cercino/vointer/internal/transport/http/dto"
	"github.com/cercino/vointer/internal/transport/http/middleware"
	"github.com/cercino/vointer/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password, req.Company)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("user_registered")

	response.Created(w, dto.RegisterResponse{User: dto.NewUserView(&user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.OK(w, dto.LoginResponse{
		User:        dto.NewUserView(&res.User),
		AccessToken: res.AccessToken,
	})
}

// VerifyEmail consumes the token from the verification link.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		response.WriteError(w, r, domain.ErrMissingField("token"))
		return
	}

	if err := h.svc.ConfirmEmail(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Msg("email_verified")

	response.OK(w, dto.MessageResponse{Message: "email verified"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Msg("password_reset_requested")

	response.OK(w, dto.MessageResponse{Message: "reset link sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.Reset(r.Context(), req.Token, req.Password); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Msg("password_reset")

	response.OK(w, dto.MessageResponse{Message: "password updated"})
}

// VerifyToken reports the identity behind the bearer token the
// middleware already accepted.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	response.OK(w, map[string]string{"userId": userID})
}
