package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RegisterHandler(authn *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if !decodeJSON(w, r, &creds) {
			return
		}
		if creds.Username == "" || creds.Password == "" {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := authn.Register(r.Context(), creds.Username, creds.Password)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateUsername) {
				writeError(w, http.StatusBadRequest, "Username already exists")
				return
			}
			log.Printf("register failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		})
	}
}

func LoginHandler(authn *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if !decodeJSON(w, r, &creds) {
			return
		}

		token, err := authn.Login(r.Context(), creds.Username, creds.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "Invalid username or password")
				return
			}
			log.Printf("login failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to log in")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": token,
			"token_type":   "bearer",
			"username":     creds.Username,
		})
	}
}
