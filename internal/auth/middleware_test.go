package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ilka-yus/task15/internal/db"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*Guard, *TokenService, *store.UserStore) {
	t.Helper()

	conn, err := db.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tokens, err := NewTokenService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	users := store.NewUserStore(conn)
	return NewGuard(tokens, users), tokens, users
}

func guarded(g *Guard, next http.Handler) http.Handler {
	return g.Middleware(next)
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()
	guard, tokens, users := newTestGuard(t)

	_, err := users.Create(context.Background(), "alice", "hash", "user")
	require.NoError(t, err)
	tok, err := tokens.Issue("alice", "user")
	require.NoError(t, err)

	var seen *models.User
	h := guarded(guard, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.Username)
}

func TestMiddleware_Rejections(t *testing.T) {
	t.Parallel()
	guard, tokens, users := newTestGuard(t)

	_, err := users.Create(context.Background(), "alice", "hash", "user")
	require.NoError(t, err)

	validForGhost, err := tokens.Issue("ghost", "user")
	require.NoError(t, err)

	h := guarded(guard, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"missing header":  "",
		"not bearer":      "Basic abc",
		"garbage token":   "Bearer not-a-jwt",
		"unknown subject": "Bearer " + validForGhost,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), name)
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()
	guard, tokens, users := newTestGuard(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "hash", "user")
	require.NoError(t, err)
	_, err = users.Create(ctx, "root", "hash", "admin")
	require.NoError(t, err)

	h := guarded(guard, RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	aliceTok, err := tokens.Issue("alice", "user")
	require.NoError(t, err)
	rootTok, err := tokens.Issue("root", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+aliceTok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+rootTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
