package addresses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes the address book.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers address routes for authenticated callers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.list))
	r.Post("/", httpx.Handle(h.logger, h.create))
	r.Put("/{id}", httpx.Handle(h.logger, h.update))
	r.Delete("/{id}", httpx.Handle(h.logger, h.delete))
	r.Post("/{id}/default", httpx.Handle(h.logger, h.setDefault))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	items, err := h.service.List(r.Context(), principal)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, items)
	return nil
}

func (h *Handler) decode(r *http.Request) (AddressInput, error) {
	var in AddressInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		return in, err
	}
	return in, httpx.Validate(h.validator, in)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	in, err := h.decode(r)
	if err != nil {
		return err
	}
	a, err := h.service.Create(r.Context(), principal, in)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, a)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	in, err := h.decode(r)
	if err != nil {
		return err
	}
	a, err := h.service.Update(r.Context(), principal, id, in)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, a)
	return nil
}

func (h *Handler) setDefault(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	a, err := h.service.SetDefault(r.Context(), principal, id)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, a)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		return err
	}
	httpx.NoContent(w)
	return nil
}
