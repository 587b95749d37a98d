package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "purchdash/internal/errors"
)

// Authenticator verifies email/password credentials against the backend.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
}

// AuthHandler serves the sign-in endpoint. Sessions carry no token state
// server-side; the client keeps only the logged-in flag and email.
type AuthHandler struct {
	auth         Authenticator
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAuthHandler wires the handler over an authenticator.
func NewAuthHandler(auth Authenticator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:         auth,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "auth_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the auth routes.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/login", h.Login)
	return r
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	LoggedIn  bool   `json:"logged_in"`
	UserEmail string `json:"user_email"`
}

// Login checks the credentials. Failures return 401 with a generic
// message; the concrete backend error stays in the details only.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("credentials", "email and password are required"))
		return
	}

	if err := h.auth.SignIn(r.Context(), req.Email, req.Password); err != nil {
		h.logger.WarnContext(r.Context(), "sign-in rejected",
			slog.String("email", req.Email))
		h.errorHandler.HandleError(w, r, apierrors.AuthError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "user signed in",
		slog.String("email", req.Email))
	render.JSON(w, r, loginResponse{LoggedIn: true, UserEmail: req.Email})
}
