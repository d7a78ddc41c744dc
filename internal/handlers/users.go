package handlers

import (
	"log"
	"net/http"

	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/store"
)

func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		})
	}
}

func AdminUsersHandler(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := users.List(r.Context())
		if err != nil {
			log.Printf("list users failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, all)
	}
}
