// Package admin serves marketplace wide moderation dashboards.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

// Stat names understood by Counter implementations.
const (
	StatProfiles          = "profiles"
	StatPendingSuppliers  = "pending_suppliers"
	StatVerifiedSuppliers = "verified_suppliers"
	StatActiveProducts    = "active_products"
	StatOpenLeads         = "open_leads"
	StatOpenTickets       = "open_tickets"
)

var statNames = []string{StatProfiles, StatPendingSuppliers, StatVerifiedSuppliers, StatActiveProducts, StatOpenLeads, StatOpenTickets}

// Stats is the admin overview.
type Stats struct {
	Profiles          int64     `json:"profiles"`
	PendingSuppliers  int64     `json:"pending_suppliers"`
	VerifiedSuppliers int64     `json:"verified_suppliers"`
	ActiveProducts    int64     `json:"active_products"`
	OpenLeads         int64     `json:"open_leads"`
	OpenTickets       int64     `json:"open_tickets"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Counter computes one named statistic.
type Counter interface {
	Count(ctx context.Context, stat string) (int64, error)
}

// PGCounter counts rows in PostgreSQL.
type PGCounter struct {
	pool *pgxpool.Pool
}

// NewCounter constructs a PGCounter.
func NewCounter(pool *pgxpool.Pool) *PGCounter {
	return &PGCounter{pool: pool}
}

var statQueries = map[string]string{
	StatProfiles:          `SELECT COUNT(*) FROM profiles WHERE is_active`,
	StatPendingSuppliers:  `SELECT COUNT(*) FROM supplier_businesses WHERE status = 'pending'`,
	StatVerifiedSuppliers: `SELECT COUNT(*) FROM supplier_businesses WHERE status = 'verified'`,
	StatActiveProducts:    `SELECT COUNT(*) FROM products WHERE is_active`,
	StatOpenLeads:         `SELECT COUNT(*) FROM buy_leads WHERE status IN ('open', 'responded')`,
	StatOpenTickets:       `SELECT COUNT(*) FROM support_tickets WHERE status IN ('open', 'in_progress')`,
}

// Count runs the query registered for stat.
func (c *PGCounter) Count(ctx context.Context, stat string) (int64, error) {
	query, ok := statQueries[stat]
	if !ok {
		return 0, fmt.Errorf("unknown stat %q", stat)
	}
	var n int64
	if err := c.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", stat, err)
	}
	return n, nil
}

// Service assembles the overview.
type Service struct {
	counter Counter
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(counter Counter) *Service {
	return &Service{counter: counter, now: time.Now}
}

// Stats runs every count concurrently and fails on the first error.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	values := make([]int64, len(statNames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range statNames {
		g.Go(func() error {
			n, err := s.counter.Count(gctx, name)
			if err != nil {
				return err
			}
			values[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Stats{
		Profiles:          values[0],
		PendingSuppliers:  values[1],
		VerifiedSuppliers: values[2],
		ActiveProducts:    values[3],
		OpenLeads:         values[4],
		OpenTickets:       values[5],
		GeneratedAt:       s.now().UTC(),
	}, nil
}

// Handler exposes the overview.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /stats. Callers must already be admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", httpx.Handle(h.logger, h.stats))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, stats)
	return nil
}
