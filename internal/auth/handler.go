package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	gate           *Gate
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *Gate, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		gate:           gate,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", httpx.Handle(h.logger, h.csrfToken))
	r.Post("/register", httpx.Handle(h.logger, h.register))
	r.Post("/login", httpx.Handle(h.logger, h.login))
	r.Post("/logout", httpx.Handle(h.logger, h.logout))
	r.With(h.gate.RequireUser).Get("/me", httpx.Handle(h.logger, h.me))
}

// MountProfileRoutes registers the profile self-service routes.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Use(h.gate.RequireUser)
	r.Get("/", httpx.Handle(h.logger, h.me))
	r.Patch("/", httpx.Handle(h.logger, h.updateProfile))
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) error {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
	return nil
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	profile, err := h.service.Register(r.Context(), req)
	if err != nil {
		return err
	}
	h.startSession(r, profile)
	httpx.JSON(w, http.StatusCreated, profile)
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	profile, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return fmt.Errorf("%w: %w", httpx.ErrUnauthorized, err)
		}
		return err
	}
	h.startSession(r, profile)
	httpx.JSON(w, http.StatusOK, profile)
	return nil
}

func (h *Handler) startSession(r *http.Request, profile *Profile) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		return
	}
	h.sessionManager.Renew(sess)
	sess.SetUser(profile.ID.String())
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, profile.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.NoContent(w)
	return nil
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	profile, err := h.service.Profile(r.Context(), principal.ProfileID)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, profile)
	return nil
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	profile, err := h.service.UpdateProfile(r.Context(), principal.ProfileID, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, profile)
	return nil
}
