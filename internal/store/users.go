package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilka-yus/task15/internal/models"
	"github.com/mattn/go-sqlite3"
)

var ErrDuplicateUsername = errors.New("username already exists")

// UserStore persists identities and their credential hashes.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, username, hashedPassword, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, hashed_password, role, created_at) VALUES (?, ?, ?, ?)",
		username, hashedPassword, role, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &models.User{
		ID:             id,
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      now,
	}, nil
}

// GetByUsername returns (nil, nil) when no such user exists.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, hashed_password, role, created_at FROM users WHERE username = ?",
		username).Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, hashed_password, role, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// isUniqueViolation matches the unique-index errors of both supported
// drivers (mysql error 1062, sqlite extended code 2067).
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
