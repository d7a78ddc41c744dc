package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ilka-yus/task15/internal/models"
)

// NoteStore persists notes scoped by owner. Every query carries the owner
// id in its predicate, so no operation can cross an ownership boundary.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func (s *NoteStore) Create(ctx context.Context, ownerID int64, text string) (*models.Note, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (text, created_at, owner_id) VALUES (?, ?, ?)",
		text, now, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return &models.Note{ID: id, Text: text, CreatedAt: now, OwnerID: ownerID}, nil
}

// Get returns (nil, nil) when the note is absent or owned by someone else.
// The two cases are indistinguishable on purpose: existence must not leak
// to non-owners.
func (s *NoteStore) Get(ctx context.Context, noteID, ownerID int64) (*models.Note, error) {
	var n models.Note
	err := s.db.QueryRowContext(ctx,
		"SELECT id, text, created_at, owner_id FROM notes WHERE id = ? AND owner_id = ?",
		noteID, ownerID).Scan(&n.ID, &n.Text, &n.CreatedAt, &n.OwnerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select note: %w", err)
	}
	return &n, nil
}

// ListFiltered returns the owner's notes in insertion order. A non-empty
// search narrows to notes whose text contains it, case-insensitively.
func (s *NoteStore) ListFiltered(ctx context.Context, ownerID int64, search string, skip, limit int) ([]models.Note, error) {
	query := "SELECT id, text, created_at, owner_id FROM notes WHERE owner_id = ?"
	args := []interface{}{ownerID}

	if search != "" {
		query += " AND LOWER(text) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt, &n.OwnerID); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update applies the set fields of upd to the note. Unset fields are left
// as they are.
func (s *NoteStore) Update(ctx context.Context, note *models.Note, upd models.NoteUpdate) (*models.Note, error) {
	if upd.Text == nil {
		return note, nil
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE notes SET text = ? WHERE id = ? AND owner_id = ?",
		*upd.Text, note.ID, note.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	updated := *note
	updated.Text = *upd.Text
	return &updated, nil
}

func (s *NoteStore) Delete(ctx context.Context, note *models.Note) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND owner_id = ?", note.ID, note.OwnerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
