package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireline/talenttrack/domains/jobs/be/service"
)

// PostgresRepository persists jobs. sequence_id comes from a bigserial so
// ordering is consistent with creation order and ids are never reused.
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
CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	sequence_id BIGSERIAL NOT NULL UNIQUE,
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'open',
	organization_id UUID NOT NULL REFERENCES tenants(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS jobs_org_seq_idx ON jobs (organization_id, sequence_id);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure jobs table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, j service.Job) (service.Job, error) {
	const stmt = `
		INSERT INTO jobs (id, title, status, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING sequence_id`
	if err := r.pool.QueryRow(ctx, stmt, j.ID, j.Title, j.Status, j.TenantID, j.CreatedAt).Scan(&j.SequenceID); err != nil {
		return service.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.Job, error) {
	const query = `
		SELECT id, sequence_id, title, status, organization_id, created_at
		FROM jobs WHERE id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Job, error) {
	conds := []string{}
	args := []any{}

	if opts.TenantID != nil {
		args = append(args, *opts.TenantID)
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Cursor > 0 {
		args = append(args, opts.Cursor)
		conds = append(conds, fmt.Sprintf("sequence_id > $%d", len(args)))
	}

	query := `SELECT id, sequence_id, title, status, organization_id, created_at FROM jobs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, fetch)
	query += fmt.Sprintf(" ORDER BY sequence_id ASC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []service.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, j service.Job) (service.Job, error) {
	const stmt = `UPDATE jobs SET title = $2, status = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, j.ID, j.Title, j.Status)
	if err != nil {
		return service.Job{}, fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.Job{}, service.ErrNotFound
	}
	return j, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE organization_id = $1)`, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("jobs exist by tenant: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[service.Status]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs WHERE organization_id = $1 GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[service.Status]int64)
	for rows.Next() {
		var status service.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanJob(row pgx.Row) (service.Job, error) {
	var j service.Job
	if err := row.Scan(&j.ID, &j.SequenceID, &j.Title, &j.Status, &j.TenantID, &j.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Job{}, service.ErrNotFound
		}
		return service.Job{}, err
	}
	return j, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
