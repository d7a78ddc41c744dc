package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike, so a caller cannot enumerate usernames.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username does not exist, keeping
// the failure latency close to the wrong-password path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)

// Authenticator verifies credentials and issues session tokens. It sits
// beside the Guard: both depend on the token service and the user store,
// neither depends on the other.
type Authenticator struct {
	users  *store.UserStore
	tokens *TokenService
}

func NewAuthenticator(users *store.UserStore, tokens *TokenService) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

func (a *Authenticator) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return a.users.Create(ctx, username, string(hash), models.RoleUser)
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return a.tokens.Issue(user.Username, user.Role)
}
