package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohithAchar/oxm-sub002/internal/admin"
	"github.com/RohithAchar/oxm-sub002/internal/auth"
	"github.com/RohithAchar/oxm-sub002/internal/observability"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/rbac"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/testing/testkit"
)

type profileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]auth.Profile
}

func (s *profileStore) FindByEmail(ctx context.Context, email string) (*auth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *profileStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &p, nil
}

func (s *profileStore) CreateProfile(ctx context.Context, p auth.Profile) (*auth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New()
	p.IsActive = true
	p.CreatedAt = time.Now()
	s.profiles[p.ID] = p
	return &p, nil
}

func (s *profileStore) UpdateProfile(ctx context.Context, id uuid.UUID, req auth.UpdateProfileRequest) (*auth.Profile, error) {
	return s.FindByID(ctx, id)
}

func (s *profileStore) CreateSession(ctx context.Context, id string, profileID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *profileStore) DeleteSession(ctx context.Context, id string) error {
	return nil
}

type zeroCounter struct{}

func (zeroCounter) Count(ctx context.Context, stat string) (int64, error) { return 0, nil }

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, health map[string]HealthChecker) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := testkit.Logger()
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}
	sessions := shared.NewSessionManager(client, "openxmart_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	authService := auth.NewService(&profileStore{profiles: map[uuid.UUID]auth.Profile{}})
	gate := auth.NewGate(authService, logger)

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,
		Gate:           gate,
		RBACMiddleware: rbac.Middleware{Logger: logger},
		Metrics:        observability.NewMetrics(),
		Health:         health,
		AuthHandler:    auth.NewHandler(logger, authService, gate, sessions, csrf),
		AdminHandler:   admin.NewHandler(logger, admin.NewService(zeroCounter{})),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func send(t *testing.T, c *http.Client, method, url, body, csrf string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if csrf != "" {
		req.Header.Set(shared.CSRFHeader, csrf)
	}
	res, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func csrfToken(t *testing.T, c *http.Client, base string) string {
	t.Helper()
	res := send(t, c, http.MethodGet, base+"/api/auth/csrf", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body["csrf_token"])
	return body["csrf_token"]
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, map[string]HealthChecker{"postgres": pinger{}})
	res := send(t, srv.Client(), http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	degraded := newTestServer(t, map[string]HealthChecker{"redis": pinger{err: errors.New("down")}})
	res = send(t, degraded.Client(), http.MethodGet, degraded.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	var report healthReport
	require.NoError(t, json.NewDecoder(res.Body).Decode(&report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "down", report.Checks["redis"])
}

func TestUnsafeRequestsNeedCSRFToken(t *testing.T) {
	srv := newTestServer(t, nil)
	c := newClient(t)
	payload := `{"email":"a@example.com","password":"password123","full_name":"A","phone":"9876543210","role":"buyer"}`

	res := send(t, c, http.MethodPost, srv.URL+"/api/auth/register", payload, "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	token := csrfToken(t, c, srv.URL)
	res = send(t, c, http.MethodPost, srv.URL+"/api/auth/register", payload, "wrong")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = send(t, c, http.MethodPost, srv.URL+"/api/auth/register", payload, token)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = send(t, c, http.MethodGet, srv.URL+"/api/auth/me", "", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// The token survives the session id rotation on sign in.
	res = send(t, c, http.MethodPost, srv.URL+"/api/auth/logout", "", token)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestRoleGates(t *testing.T) {
	srv := newTestServer(t, nil)

	anon := newClient(t)
	res := send(t, anon, http.MethodGet, srv.URL+"/api/admin/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))

	buyer := newClient(t)
	token := csrfToken(t, buyer, srv.URL)
	res = send(t, buyer, http.MethodPost, srv.URL+"/api/auth/register",
		`{"email":"b@example.com","password":"password123","full_name":"B","phone":"9876543210","role":"buyer"}`, token)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = send(t, buyer, http.MethodGet, srv.URL+"/api/admin/stats", "", "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestUnknownRouteIsProblem(t *testing.T) {
	srv := newTestServer(t, nil)
	res := send(t, srv.Client(), http.MethodGet, srv.URL+"/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	assert.Equal(t, http.StatusNotFound, problem.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	send(t, srv.Client(), http.MethodGet, srv.URL+"/healthz", "", "")
	res := send(t, srv.Client(), http.MethodGet, srv.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `openxmart_http_requests_total{code="200",route="/healthz"}`)
}
