package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireline/talenttrack/domains/candidates/be/service"
)

const uniqueViolation = "23505"

// PostgresRepository persists candidates. The unique (email, job_id) pair
// backs the one-application-per-job rule.
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
CREATE TABLE IF NOT EXISTS candidates (
	id UUID PRIMARY KEY,
	sequence_id BIGSERIAL NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'applied',
	job_id UUID NOT NULL REFERENCES jobs(id),
	organization_id UUID NOT NULL REFERENCES tenants(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (email, job_id)
);
CREATE INDEX IF NOT EXISTS candidates_org_seq_idx ON candidates (organization_id, sequence_id);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure candidates table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c service.Candidate) (service.Candidate, error) {
	const stmt = `
		INSERT INTO candidates (id, name, email, status, job_id, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sequence_id`
	err := r.pool.QueryRow(ctx, stmt, c.ID, c.Name, c.Email, c.Status, c.JobID, c.TenantID, c.CreatedAt).Scan(&c.SequenceID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.Candidate{}, service.ErrAlreadyApplied
		}
		return service.Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.Candidate, error) {
	const query = `
		SELECT id, sequence_id, name, email, status, job_id, organization_id, created_at
		FROM candidates WHERE id = $1`
	return scanCandidate(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Candidate, error) {
	conds := []string{}
	args := []any{}

	if opts.TenantID != nil {
		args = append(args, *opts.TenantID)
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if opts.JobID != nil {
		args = append(args, *opts.JobID)
		conds = append(conds, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Cursor > 0 {
		args = append(args, opts.Cursor)
		conds = append(conds, fmt.Sprintf("sequence_id > $%d", len(args)))
	}

	query := `SELECT id, sequence_id, name, email, status, job_id, organization_id, created_at FROM candidates`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, fetch)
	query += fmt.Sprintf(" ORDER BY sequence_id ASC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []service.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, c service.Candidate) (service.Candidate, error) {
	const stmt = `UPDATE candidates SET name = $2, status = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, c.ID, c.Name, c.Status)
	if err != nil {
		return service.Candidate{}, fmt.Errorf("update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.Candidate{}, service.ErrNotFound
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsByJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE job_id = $1)`, jobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("candidates exist by job: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE organization_id = $1)`, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("candidates exist by tenant: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[service.Status]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM candidates WHERE organization_id = $1 GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count candidates by status: %w", err)
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

func scanCandidate(row pgx.Row) (service.Candidate, error) {
	var c service.Candidate
	if err := row.Scan(&c.ID, &c.SequenceID, &c.Name, &c.Email, &c.Status, &c.JobID, &c.TenantID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Candidate{}, service.ErrNotFound
		}
		return service.Candidate{}, err
	}
	return c, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
