package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const userColumns = `id, username, email, first_name, last_name, is_admin, status, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool
	Status    string
	CreatedAt time.Time
}

func (r *Repository) GetUserByLogin(ctx context.Context, login string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR (email <> '' AND lower(email) = lower($1))
		ORDER BY (username = $1) DESC
		LIMIT 1`, login)
	return scanUser(row)
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsAdmin, &u.Status, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
