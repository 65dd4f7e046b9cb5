package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/RohithAchar/oxm-sub002/internal/addresses"
	"github.com/RohithAchar/oxm-sub002/internal/admin"
	"github.com/RohithAchar/oxm-sub002/internal/auth"
	"github.com/RohithAchar/oxm-sub002/internal/banking"
	"github.com/RohithAchar/oxm-sub002/internal/catalog"
	"github.com/RohithAchar/oxm-sub002/internal/leads"
	"github.com/RohithAchar/oxm-sub002/internal/notifications"
	"github.com/RohithAchar/oxm-sub002/internal/observability"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/rbac"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
	"github.com/RohithAchar/oxm-sub002/internal/support"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           *auth.Gate
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
	Health         map[string]HealthChecker

	AuthHandler          *auth.Handler
	SupplierHandler      *suppliers.Handler
	BankingHandler       *banking.Handler
	CatalogHandler       *catalog.Handler
	LeadsHandler         *leads.Handler
	NotificationsHandler *notifications.Handler
	SupportHandler       *support.Handler
	AddressesHandler     *addresses.Handler
	AdminHandler         *admin.Handler
}

// NewRouter constructs the chi.Router with OpenXmart defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", healthHandler(params.Health))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		mountAPI(r, params)
	})

	return r
}

func mountAPI(r chi.Router, params RouterParams) {
	rbacMW := params.RBACMiddleware
	if rbacMW.Logger == nil {
		rbacMW.Logger = params.Logger
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/profile", params.AuthHandler.MountProfileRoutes)

	// Public catalogue.
	if params.SupplierHandler != nil {
		r.Route("/suppliers", params.SupplierHandler.MountPublicRoutes)
	}
	if params.CatalogHandler != nil {
		r.Route("/products", params.CatalogHandler.MountPublicRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.RequireUser)

		if params.BankingHandler != nil {
			r.Route("/ifsc", params.BankingHandler.MountRoutes)
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.SupportHandler != nil {
			r.Route("/support/tickets", params.SupportHandler.MountRoutes)
		}
		if params.AddressesHandler != nil {
			r.Route("/addresses", params.AddressesHandler.MountRoutes)
		}
		if params.LeadsHandler != nil {
			r.Route("/rfq/leads", func(r chi.Router) {
				r.Use(rbacMW.RequireRole(shared.RoleBuyer, shared.RoleSupplier))
				params.LeadsHandler.MountRoutes(r)
			})
		}

		r.Route("/supplier", func(r chi.Router) {
			r.Use(rbacMW.RequireRole(shared.RoleSupplier))
			if params.SupplierHandler != nil {
				r.Route("/business", params.SupplierHandler.MountSupplierRoutes)
			}
			if params.CatalogHandler != nil {
				r.Route("/products", params.CatalogHandler.MountSupplierRoutes)
			}
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(rbacMW.RequireAdmin())
			if params.SupplierHandler != nil {
				r.Route("/suppliers", params.SupplierHandler.MountAdminRoutes)
			}
			if params.CatalogHandler != nil {
				r.Route("/products", params.CatalogHandler.MountAdminRoutes)
			}
			if params.NotificationsHandler != nil {
				r.Route("/notifications", params.NotificationsHandler.MountAdminRoutes)
			}
			if params.SupportHandler != nil {
				r.Route("/support/tickets", params.SupportHandler.MountAdminRoutes)
			}
			if params.AdminHandler != nil {
				params.AdminHandler.MountRoutes(r)
			}
		})
	})
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		report := healthReport{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if report.Checks == nil {
				report.Checks = make(map[string]string, len(checks))
			}
			if err := check.Ping(ctx); err != nil {
				report.Checks[name] = "down"
				report.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = "up"
		}
		httpx.JSON(w, status, report)
	}
}
