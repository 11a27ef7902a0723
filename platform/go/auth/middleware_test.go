package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hireline/talenttrack/platform/go/access"
)

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	mgr, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	p := access.Principal{UserID: uuid.New(), Email: "a@b.test", Role: access.RoleAdmin, TenantID: uuid.New()}
	token, err := mgr.Issue(p)
	require.NoError(t, err)

	var got access.Principal
	var found bool
	handler := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	require.Equal(t, p, got)
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	mgr, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	handler := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireBlocksAnonymous(t *testing.T) {
	handler := Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a principal")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
