package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"devcampfire/internal/domain"
	"devcampfire/internal/github"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"InvalidInput", fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest},
		{"Unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"Forbidden", fmt.Errorf("%w: nope", domain.ErrForbidden), http.StatusForbidden},
		{"NotFound", domain.ErrNotFound, http.StatusNotFound},
		{"Conflict", domain.ErrConflict, http.StatusConflict},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
		{"Upstream4xx", &github.UpstreamError{StatusCode: 404, Resource: "user"}, http.StatusNotFound},
		{"Upstream5xx", &github.UpstreamError{StatusCode: 503, Resource: "repos"}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}
