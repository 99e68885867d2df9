package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Admin        bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, is_admin
    FROM users
    WHERE email = $1 AND active
  `, normalizeEmail(email)).Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Admin)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// EnsureUser inserts the user unless the email is already taken and returns its id.
func (s *Store) EnsureUser(ctx context.Context, email, passwordHash string, admin bool) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", normalizeEmail(email)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, is_admin)
    VALUES ($1, $2, $3)
    RETURNING id
  `, normalizeEmail(email), passwordHash, admin).Scan(&id)
	return id, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
