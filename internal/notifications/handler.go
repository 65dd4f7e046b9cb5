package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes notification endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers inbox routes. The caller must be authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.inbox))
	r.Get("/unread-count", httpx.Handle(h.logger, h.unreadCount))
	r.Post("/read-all", httpx.Handle(h.logger, h.markAllRead))
	r.Post("/{id}/read", httpx.Handle(h.logger, h.markRead))
}

// MountAdminRoutes registers the broadcast endpoint.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", httpx.Handle(h.logger, h.send))
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req SendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	result, err := h.service.Send(r.Context(), &principal.ProfileID, req)
	if err != nil {
		return err
	}
	h.logger.Info("notification sent",
		slog.String("notification_id", result.Notification.ID.String()),
		slog.Int("receipts", result.Receipts))
	httpx.JSON(w, http.StatusCreated, result)
	return nil
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	page, perPage := httpx.PageParams(r)
	result, err := h.service.Inbox(r.Context(), principal, InboxFilter{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(r.Context(), principal)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": count})
	return nil
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		return err
	}
	httpx.NoContent(w)
	return nil
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(r.Context(), principal)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"updated": updated})
	return nil
}
