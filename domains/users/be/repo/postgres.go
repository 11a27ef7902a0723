package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireline/talenttrack/domains/users/be/service"
)

const uniqueViolation = "23505"

// PostgresRepository persists users.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository ensures the backing table exists and returns a
// repository instance.
func NewPostgresRepository(ctx context.Context, pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}

	ddl := `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	organization_id UUID NOT NULL REFERENCES tenants(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS users_org_idx ON users (organization_id);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure users table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u service.User) (service.User, error) {
	const stmt = `
		INSERT INTO users (id, name, email, password_hash, role, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, stmt, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.TenantID, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.User{}, service.ErrConflictEmail
		}
		return service.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, organization_id, created_at
		FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (service.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, organization_id, created_at
		FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions) ([]service.User, error) {
	query := `SELECT id, name, email, password_hash, role, organization_id, created_at FROM users`
	args := []any{}
	if opts.TenantID != nil {
		query += ` WHERE organization_id = $1`
		args = append(args, *opts.TenantID)
	}
	query += ` ORDER BY email ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []service.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, u service.User) (service.User, error) {
	const stmt = `UPDATE users SET name = $2, role = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, u.ID, u.Name, u.Role)
	if err != nil {
		return service.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.User{}, service.ErrNotFound
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE organization_id = $1)`, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users exist by tenant: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (service.User, error) {
	var u service.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.TenantID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.User{}, service.ErrNotFound
		}
		return service.User{}, err
	}
	return u, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
