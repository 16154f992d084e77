package main

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, id uint, role models.Role) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(id, role, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouterGates(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	auth.SetSigningKey(priv, auth.Options{KeyID: "test", Issuer: "crm-api", Audience: "crm-frontend"})

	r := newRouter(nil, notification.Nop{})
	rep := token(t, 1, models.RoleSalesRep)
	manager := token(t, 9, models.RoleManager)

	cases := []struct {
		method, path, auth string
		want               int
	}{
		{http.MethodGet, "/contacts/leads", "", http.StatusUnauthorized},
		{http.MethodGet, "/dashboard", "Bearer garbage", http.StatusUnauthorized},
		{http.MethodGet, "/admin/dashboard", rep, http.StatusForbidden},
		{http.MethodGet, "/admin/tasks", rep, http.StatusForbidden},
		{http.MethodPost, "/users", rep, http.StatusForbidden},
		{http.MethodPost, "/users/2/toggle-status", rep, http.StatusForbidden},
		{http.MethodGet, "/contacts/pipeline", manager, http.StatusNotFound},
		{http.MethodGet, "/.well-known/jwks.json", "", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, tc.want, rr.Code, "%s %s", tc.method, tc.path)
	}
}
