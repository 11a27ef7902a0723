package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireline/talenttrack/domains/tenants/be/service"
)

const uniqueViolation = "23505"

// PostgresRepository persists tenants in the shared relational store.
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
CREATE TABLE IF NOT EXISTS tenants (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure tenants table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	const stmt = `INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, stmt, t.ID, t.Name, t.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.Tenant{}, service.ErrConflictName
		}
		return service.Tenant{}, fmt.Errorf("insert tenant: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.Tenant, error) {
	const query = `SELECT id, name, created_at FROM tenants WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (service.Tenant, error) {
	const query = `SELECT id, name, created_at FROM tenants WHERE name = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions) ([]service.Tenant, error) {
	query := `SELECT id, name, created_at FROM tenants`
	args := []any{}
	if opts.Name != nil {
		query += ` WHERE name = $1`
		args = append(args, *opts.Name)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []service.Tenant
	for rows.Next() {
		var t service.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *PostgresRepository) Rename(ctx context.Context, id uuid.UUID, name string) (service.Tenant, error) {
	const stmt = `UPDATE tenants SET name = $2 WHERE id = $1 RETURNING id, name, created_at`
	t, err := r.scanOne(r.pool.QueryRow(ctx, stmt, id, name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.Tenant{}, service.ErrConflictName
		}
		return service.Tenant{}, err
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (service.Tenant, error) {
	var t service.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Tenant{}, service.ErrNotFound
		}
		return service.Tenant{}, err
	}
	return t, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
