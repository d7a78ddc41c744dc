package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/service"
	"github.com/ilka-yus/task15/internal/store"
	"github.com/ilka-yus/task15/internal/tasks"
	"github.com/ilka-yus/task15/internal/ws"
)

// NewRouter wires every route of the service onto one mux router.
func NewRouter(
	authn *auth.Authenticator,
	guard *auth.Guard,
	users *store.UserStore,
	svc *service.NoteService,
	queue *tasks.Queue,
	hub *ws.Hub,
) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", RegisterHandler(authn)).Methods(http.MethodPost)
	r.HandleFunc("/login", LoginHandler(authn)).Methods(http.MethodPost)
	r.HandleFunc("/ws", ws.ServeWS(hub)).Methods(http.MethodGet)

	// Authenticated routes
	s := r.PathPrefix("/").Subrouter()
	s.Use(guard.Middleware)

	s.HandleFunc("/users/me", MeHandler()).Methods(http.MethodGet)
	s.HandleFunc("/notes", CreateNoteHandler(svc)).Methods(http.MethodPost)
	s.HandleFunc("/notes", ListNotesHandler(svc)).Methods(http.MethodGet)
	s.HandleFunc("/notes/{id}", GetNoteHandler(svc)).Methods(http.MethodGet)
	s.HandleFunc("/notes/{id}", UpdateNoteHandler(svc)).Methods(http.MethodPut)
	s.HandleFunc("/notes/{id}", DeleteNoteHandler(svc)).Methods(http.MethodDelete)
	s.HandleFunc("/trigger-task", TriggerTaskHandler(queue)).Methods(http.MethodPost)

	// Admin routes
	a := s.PathPrefix("/admin").Subrouter()
	a.Use(auth.RequireRole(models.RoleAdmin))
	a.HandleFunc("/users", AdminUsersHandler(users)).Methods(http.MethodGet)

	return r
}
