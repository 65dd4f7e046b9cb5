package leads

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes lead endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers lead routes. The caller must be authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", httpx.Handle(h.logger, h.create))
	r.Get("/", httpx.Handle(h.logger, h.list))
	r.Get("/{id}", httpx.Handle(h.logger, h.get))
	r.Post("/{id}/respond", httpx.Handle(h.logger, h.respond))
	r.Post("/{id}/close", httpx.Handle(h.logger, h.close))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	lead, err := h.service.Create(r.Context(), principal, req, r.Header.Get(shared.IdempotencyHeader))
	if err != nil {
		return err
	}
	h.logger.Info("lead created",
		slog.String("lead_id", lead.ID.String()),
		slog.String("supplier_id", lead.SupplierID.String()))
	httpx.JSON(w, http.StatusCreated, lead)
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	page, perPage := httpx.PageParams(r)
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), principal, Party(q.Get("role")), ListFilter{
		Status:  Status(q.Get("status")),
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
	lead, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, lead)
	return nil
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	var req RespondRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	lead, err := h.service.Respond(r.Context(), principal, id, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, lead)
	return nil
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	var req CloseRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			return err
		}
	}
	lead, err := h.service.Close(r.Context(), principal, id, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, lead)
	return nil
}
