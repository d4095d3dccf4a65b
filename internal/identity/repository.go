package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrMissingCredentials indicates email or password was not supplied.
	ErrMissingCredentials = errors.New("email and password are required")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	FindOne(ctx context.Context, creds Credentials) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user and returns it with its assigned identifier.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	id := uuid.New()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, name, email, password, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, user.Name, user.Email, user.Password, user.CreatedAt.UTC())
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id.String()
	return user, nil
}

// FindOne returns the first user whose stored fields equal every filter field.
func (r *PostgresRepository) FindOne(ctx context.Context, creds Credentials) (User, error) {
	conds := []string{"email = $1", "password = $2"}
	args := []any{creds.Email, creds.Password}
	if creds.Name != "" {
		args = append(args, creds.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}
	query := `SELECT id, name, email, password, created_at FROM users WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at LIMIT 1`

	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(&id, &user.Name, &user.Email, &user.Password, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
