package support

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes support endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers ticket routes for authenticated callers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", httpx.Handle(h.logger, h.create))
	r.Get("/", httpx.Handle(h.logger, h.list))
	r.Get("/{id}", httpx.Handle(h.logger, h.get))
	r.Post("/{id}/messages", httpx.Handle(h.logger, h.addMessage))
}

// MountAdminRoutes registers admin ticket routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/{id}/status", httpx.Handle(h.logger, h.setStatus))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req CreateTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	ticket, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, ticket)
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	page, perPage := httpx.PageParams(r)
	result, err := h.service.List(r.Context(), principal, ListFilter{
		Status:  Status(r.URL.Query().Get("status")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, ticket)
	return nil
}

func (h *Handler) addMessage(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	var req MessageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	msg, err := h.service.AddMessage(r.Context(), principal, id, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, msg)
	return nil
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	ticket, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		return err
	}
	h.logger.Info("ticket status changed", slog.String("ticket_id", id.String()), slog.String("status", string(ticket.Status)))
	httpx.JSON(w, http.StatusOK, ticket)
	return nil
}
