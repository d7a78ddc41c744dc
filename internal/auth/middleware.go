package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/store"
)

var (
	ErrUnauthorized = errors.New("could not validate credentials")
	ErrForbidden    = errors.New("insufficient role")
)

type ctxKey int

const userKey ctxKey = 0

// Guard resolves the bearer token on a request to a stored user. An invalid
// or expired token and a token whose subject no longer exists are reported
// identically.
type Guard struct {
	tokens *TokenService
	users  *store.UserStore
}

func NewGuard(tokens *TokenService, users *store.UserStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

func (g *Guard) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := g.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}
		user, err := g.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				unauthorized(w)
			} else {
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireRole gates an already-authenticated request: a resolved identity
// with the wrong role gets 403, not 401.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				unauthorized(w)
				return
			}
			if user.Role != role {
				writeDetail(w, http.StatusForbidden, "Access denied: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
