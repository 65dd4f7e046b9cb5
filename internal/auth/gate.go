package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// ProfileFinder resolves session users into profiles.
type ProfileFinder interface {
	Profile(ctx context.Context, id uuid.UUID) (*Profile, error)
}

// Gate authenticates requests against the session store.
type Gate struct {
	profiles ProfileFinder
	logger   *slog.Logger
}

// NewGate constructs the auth gate.
func NewGate(profiles ProfileFinder, logger *slog.Logger) *Gate {
	return &Gate{profiles: profiles, logger: logger}
}

// RequireUser rejects requests without an active signed-in profile and
// stores the resolved shared.Principal in the request context.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.resolve(r)
		if err != nil {
			if !errors.Is(err, httpx.ErrUnauthorized) && g.logger != nil {
				g.logger.Error("auth gate", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func (g *Gate) resolve(r *http.Request) (shared.Principal, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return shared.Principal{}, httpx.ErrUnauthorized
	}
	id, err := uuid.Parse(sess.User())
	if err != nil {
		return shared.Principal{}, httpx.ErrUnauthorized
	}
	profile, err := g.profiles.Profile(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return shared.Principal{}, httpx.ErrUnauthorized
		}
		return shared.Principal{}, err
	}
	if !profile.IsActive {
		return shared.Principal{}, httpx.ErrUnauthorized
	}
	return profile.Principal(), nil
}
