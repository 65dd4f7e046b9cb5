package catalog

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes catalog endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountPublicRoutes registers the buyer facing catalog.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.publicList))
	r.Get("/{id}", httpx.Handle(h.logger, h.publicGet))
}

// MountSupplierRoutes registers product management for suppliers.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.mine))
	r.Post("/", httpx.Handle(h.logger, h.create))
	r.Put("/{id}", httpx.Handle(h.logger, h.update))
	r.Delete("/{id}", httpx.Handle(h.logger, h.delete))
}

// MountAdminRoutes registers moderation routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/{id}/status", httpx.Handle(h.logger, h.setStatus))
}

func listFilter(r *http.Request) (ListFilter, error) {
	page, perPage := httpx.PageParams(r)
	supplierID, err := httpx.QueryUUID(r, "supplier_id")
	if err != nil {
		return ListFilter{}, err
	}
	q := r.URL.Query()
	return ListFilter{
		Search:     strings.TrimSpace(q.Get("q")),
		Category:   strings.TrimSpace(q.Get("category")),
		SupplierID: supplierID,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func (h *Handler) publicList(w http.ResponseWriter, r *http.Request) error {
	filter, err := listFilter(r)
	if err != nil {
		return err
	}
	page, err := h.service.PublicList(r.Context(), filter)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, page)
	return nil
}

func (h *Handler) publicGet(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.service.PublicGet(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	filter, err := listFilter(r)
	if err != nil {
		return err
	}
	page, err := h.service.Mine(r.Context(), principal, filter)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, page)
	return nil
}

func (h *Handler) decodeInput(r *http.Request) (ProductInput, error) {
	var in ProductInput
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
	in, err := h.decodeInput(r)
	if err != nil {
		return err
	}
	p, err := h.service.Create(r.Context(), principal, in)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, p)
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
	in, err := h.decodeInput(r)
	if err != nil {
		return err
	}
	p, err := h.service.Update(r.Context(), principal, id, in)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, p)
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

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
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
	p, err := h.service.SetStatus(r.Context(), principal, id, *req.IsActive)
	if err != nil {
		return err
	}
	h.logger.Info("product status changed",
		slog.String("product_id", id.String()),
		slog.Bool("is_active", p.IsActive))
	httpx.JSON(w, http.StatusOK, p)
	return nil
}
