package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, name, email, password_hash, credits, created_at, updated_at`

// Create inserts a new user account.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	query := `
INSERT INTO users (id, name, email, password_hash, credits)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.Credits,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, domain.NormalizeEmail(email))
	return scanUser(row)
}

// ReserveCredits debits the balance as a single conditional update so that
// concurrent reservations against the same account can never overdraw it.
func (r *UserRepositoryPG) ReserveCredits(ctx context.Context, userID string, amount int) (int, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET credits = credits - $2, updated_at = now()
WHERE id = $1 AND credits >= $2
RETURNING credits;
`, userID, amount)

	var remaining int
	err := row.Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve credits: %w", err)
	}

	// The conditional update matched nothing: either the balance is too low
	// or the account is gone. The two cases are surfaced distinctly so the
	// caller can tell a broke user from a stale session.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("reserve credits: check account: %w", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientCredits
}

// RefundCredits returns previously reserved credits to the account.
func (r *UserRepositoryPG) RefundCredits(ctx context.Context, userID string, amount int) error {
	_, err := r.pool.Exec(ctx, `
UPDATE users
SET credits = credits + $2, updated_at = now()
WHERE id = $1;
`, userID, amount)
	if err != nil {
		return fmt.Errorf("refund credits: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
