package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("lead: %w", ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("product: %w", ErrNotFound), http.StatusNotFound},
		{"validation", Invalid("quantity must be positive"), http.StatusBadRequest},
		{"duplicate", fmt.Errorf("business: %w", ErrDuplicate), http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, StatusOf(tc.err))

			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}

type signupInput struct {
	Email string `validate:"required,email"`
	Qty   int    `validate:"gt=0"`
}

func TestFromValidatorCollectsFields(t *testing.T) {
	err := validator.New().Struct(signupInput{Email: "nope"})
	require.Error(t, err)

	mapped := FromValidator(err)
	assert.True(t, errors.Is(mapped, ErrValidation))

	rec := httptest.NewRecorder()
	RespondError(rec, mapped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "must be a valid email", body.Fields["Email"])
	assert.Equal(t, "must be greater than 0", body.Fields["Qty"])
}

func TestHandleWritesProblemOnError(t *testing.T) {
	h := Handle(nil, func(w http.ResponseWriter, r *http.Request) error {
		return ErrUnauthorized
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSONRejectsBadBodies(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(req, &target), ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	assert.ErrorIs(t, DecodeJSON(req, &target), ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"steel rods"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "steel rods", target.Name)
}

func TestPageParamsBounds(t *testing.T) {
	page, per := PageParams(httptest.NewRequest(http.MethodGet, "/?page=-2&per_page=500", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, per)
}
