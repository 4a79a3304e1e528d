package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routeSecret = "route-table-secret"

// newTestServer builds the full route table on a database that expects no
// queries. Only requests rejected before reaching a service are sent.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	srv := New(Deps{
		DB: sqlx.NewDb(sqlDB, "sqlmock"),
		Config: &config.Config{
			Env:       "dev",
			Port:      "0",
			JWTSecret: routeSecret,
			Currency:  "gbp",
		},
		Clock: clock.Fixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
	return srv.Handler()
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(1, role+"@example.com", role, routeSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouteGuards(t *testing.T) {
	h := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{"anonymous me", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"anonymous checkout", http.MethodPost, "/payments/checkout/1", "", http.StatusUnauthorized},
		{"anonymous join", http.MethodPost, "/events/3/join", "", http.StatusUnauthorized},
		{"member on trainer dashboard", http.MethodGet, "/trainer/dashboard", auth.RoleMember, http.StatusForbidden},
		{"member creating an event", http.MethodPost, "/trainer/events", auth.RoleMember, http.StatusForbidden},
		{"member on admin dashboard", http.MethodGet, "/admin/dashboard", auth.RoleMember, http.StatusForbidden},
		{"trainer creating a plan", http.MethodPost, "/admin/plans", auth.RoleTrainer, http.StatusForbidden},
		{"trainer cancelling a membership", http.MethodPost, "/admin/memberships/5/cancel", auth.RoleTrainer, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", auth.RoleAdmin, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set("Authorization", bearer(t, tc.role))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestAdminTestEmailValidatesBeforeSending(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/test-email", strings.NewReader(`{"email":"not-an-address"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, auth.RoleAdmin))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreflightAndMetrics(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "https://club.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Stripe-Signature")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
