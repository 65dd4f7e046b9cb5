// Package testkit holds helpers shared by handler tests. Importing it puts
// the process into test mode.
package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/RohithAchar/oxm-sub002/internal/shared"
	_ "github.com/RohithAchar/oxm-sub002/testing"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewPrincipal returns a principal with a fresh profile id.
func NewPrincipal(role shared.Role) shared.Principal {
	return shared.Principal{ProfileID: uuid.New(), Email: string(role) + "@example.com", Role: role}
}

// PrincipalHeader selects the caller in handler tests; its value is a key of
// the map given to AsPrincipal.
const PrincipalHeader = "X-Test-Principal"

// AsPrincipal injects the principal named by PrincipalHeader. Requests
// without the header stay anonymous.
func AsPrincipal(principals map[string]shared.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := principals[r.Header.Get(PrincipalHeader)]; ok {
				r = r.WithContext(shared.ContextWithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Do sends body as JSON through h on behalf of the named principal.
func Do(t *testing.T, h http.Handler, method, path, who string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if who != "" {
		req.Header.Set(PrincipalHeader, who)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a recorded JSON response.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}
