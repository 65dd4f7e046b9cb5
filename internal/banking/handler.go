package banking

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

// Handler exposes the IFSC lookup endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /{code}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{code}", httpx.Handle(h.logger, h.lookup))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) error {
	branch, err := h.service.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, branch)
	return nil
}
