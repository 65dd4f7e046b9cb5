package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Middleware wires role authorization helpers for HTTP handlers. It must run
// after the auth gate has stored the principal.
type Middleware struct {
	Logger *slog.Logger
}

// RequireRole ensures the current principal holds one of the roles.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[principal.Role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.String("profile_id", principal.ProfileID.String()),
					slog.String("role", string(principal.Role)),
					slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "requires role "+joinRoles(roles))
		})
	}
}

// RequireAdmin is shorthand for RequireRole(shared.RoleAdmin).
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequireRole(shared.RoleAdmin)
}

func normalizeRoles(roles []shared.Role) map[shared.Role]struct{} {
	set := make(map[shared.Role]struct{}, len(roles))
	for _, r := range roles {
		r = shared.Role(strings.TrimSpace(strings.ToLower(string(r))))
		if !r.Valid() {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

func joinRoles(roles []shared.Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " or ")
}
