package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ilka-yus/task15/internal/cache"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/ilka-yus/task15/internal/store"
)

var (
	// ErrNotFound covers both "no such note" and "not your note"; the two
	// must stay indistinguishable at every layer above the store.
	ErrNotFound = errors.New("note not found")

	ErrValidation = errors.New("invalid request")
)

const (
	DefaultLimit = 100
)

// NoteService composes the note store and the cache behind the public note
// operations. Reads go through the cache; every successful write
// invalidates the owner's entries before returning.
type NoteService struct {
	notes *store.NoteStore
	cache *cache.NotesCache
}

func NewNoteService(notes *store.NoteStore, cache *cache.NotesCache) *NoteService {
	return &NoteService{notes: notes, cache: cache}
}

func (s *NoteService) List(ctx context.Context, user *models.User, search string, skip, limit int) ([]models.Note, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0", ErrValidation)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1", ErrValidation)
	}

	key := cache.Key(user.ID, search, skip, limit)
	if data, ok := s.cache.Lookup(ctx, key); ok {
		var notes []models.Note
		if err := json.Unmarshal(data, &notes); err == nil {
			return notes, nil
		}
		// Undecodable entry: fall through to the store as if it were a miss.
	}

	notes, err := s.notes.ListFiltered(ctx, user.ID, search, skip, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(notes); err == nil {
		s.cache.Store(ctx, key, data)
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, user *models.User, text string) (*models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", ErrValidation)
	}

	// A disconnecting client must not abort the write or the invalidation
	// that follows it; only delivery of the response may be lost.
	ctx = context.WithoutCancel(ctx)

	note, err := s.notes.Create(ctx, user.ID, text)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateOwner(ctx, user.ID)
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, user *models.User, noteID int64) (*models.Note, error) {
	note, err := s.notes.Get(ctx, noteID, user.ID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, user *models.User, noteID int64, upd models.NoteUpdate) (*models.Note, error) {
	if upd.Text != nil && strings.TrimSpace(*upd.Text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", ErrValidation)
	}

	note, err := s.Get(ctx, user, noteID)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	updated, err := s.notes.Update(ctx, note, upd)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateOwner(ctx, user.ID)
	return updated, nil
}

func (s *NoteService) Delete(ctx context.Context, user *models.User, noteID int64) error {
	note, err := s.Get(ctx, user, noteID)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	if err := s.notes.Delete(ctx, note); err != nil {
		return err
	}
	s.cache.InvalidateOwner(ctx, user.ID)
	return nil
}
