package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/service"
)

func CreateNoteHandler(svc *service.NoteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())

		var body struct {
			Text string `json:"text"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}

		note, err := svc.Create(r.Context(), user, body.Text)
		if err != nil {
			writeServiceError(w, err, "Failed to create note")
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func ListNotesHandler(svc *service.NoteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		query := r.URL.Query()

		search := query.Get("search")
		skip, ok := intParam(w, query.Get("skip"), 0)
		if !ok {
			return
		}
		limit, ok := intParam(w, query.Get("limit"), service.DefaultLimit)
		if !ok {
			return
		}

		notes, err := svc.List(r.Context(), user, search, skip, limit)
		if err != nil {
			writeServiceError(w, err, "Failed to list notes")
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func GetNoteHandler(svc *service.NoteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		noteID, ok := noteIDVar(w, r)
		if !ok {
			return
		}

		note, err := svc.Get(r.Context(), user, noteID)
		if err != nil {
			writeServiceError(w, err, "Failed to fetch note")
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func UpdateNoteHandler(svc *service.NoteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		noteID, ok := noteIDVar(w, r)
		if !ok {
			return
		}

		var upd models.NoteUpdate
		if !decodeJSON(w, r, &upd) {
			return
		}

		note, err := svc.Update(r.Context(), user, noteID, upd)
		if err != nil {
			writeServiceError(w, err, "Failed to update note")
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func DeleteNoteHandler(svc *service.NoteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		noteID, ok := noteIDVar(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), user, noteID); err != nil {
			writeServiceError(w, err, "Failed to delete note")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func noteIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return 0, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameter")
		return 0, false
	}
	return n, true
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
