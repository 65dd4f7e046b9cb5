package suppliers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Handler exposes supplier business endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountSupplierRoutes registers the caller's own business routes.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Post("/", httpx.Handle(h.logger, h.create))
	r.Get("/", httpx.Handle(h.logger, h.mine))
	r.Patch("/", httpx.Handle(h.logger, h.update))
	r.Put("/bank", httpx.Handle(h.logger, h.upsertBank))
	r.Get("/bank", httpx.Handle(h.logger, h.bank))
}

// MountPublicRoutes registers the verified supplier directory.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.publicList))
	r.Get("/{id}", httpx.Handle(h.logger, h.publicGet))
}

// MountAdminRoutes registers moderation routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", httpx.Handle(h.logger, h.adminList))
	r.Post("/{id}/review", httpx.Handle(h.logger, h.review))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req CreateBusinessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	b, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, b)
	return nil
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	b, err := h.service.Mine(r.Context(), principal)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, b)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req UpdateBusinessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	b, err := h.service.UpdateMine(r.Context(), principal, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, b)
	return nil
}

func (h *Handler) upsertBank(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	var req UpsertBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	d, err := h.service.UpsertBank(r.Context(), principal, req)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, d)
	return nil
}

func (h *Handler) bank(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	d, err := h.service.Bank(r.Context(), principal)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, d)
	return nil
}

func listFilter(r *http.Request) ListFilter {
	page, perPage := httpx.PageParams(r)
	q := r.URL.Query()
	return ListFilter{
		Search:  strings.TrimSpace(q.Get("q")),
		City:    strings.TrimSpace(q.Get("city")),
		Status:  Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	}
}

func (h *Handler) publicList(w http.ResponseWriter, r *http.Request) error {
	page, err := h.service.PublicList(r.Context(), listFilter(r))
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
	b, err := h.service.PublicGet(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, b)
	return nil
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) error {
	page, err := h.service.AdminList(r.Context(), listFilter(r))
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, page)
	return nil
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) error {
	principal, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		return err
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return err
	}
	b, err := h.service.Review(r.Context(), principal, id, req)
	if err != nil {
		return err
	}
	h.logger.Info("supplier reviewed",
		slog.String("business_id", b.ID.String()),
		slog.String("status", string(b.Status)),
		slog.String("actor", principal.ProfileID.String()))
	httpx.JSON(w, http.StatusOK, b)
	return nil
}
