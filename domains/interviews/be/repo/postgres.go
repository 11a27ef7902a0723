package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireline/talenttrack/domains/interviews/be/service"
)

const uniqueViolation = "23505"

// PostgresRepository persists interviews. The unique (candidate_id,
// scheduled_at) pair backs the one-interview-per-slot rule.
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
CREATE TABLE IF NOT EXISTS interviews (
	id UUID PRIMARY KEY,
	sequence_id BIGSERIAL NOT NULL UNIQUE,
	candidate_id UUID NOT NULL REFERENCES candidates(id),
	scheduled_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL DEFAULT 'scheduled',
	calendar_link TEXT NOT NULL,
	organization_id UUID NOT NULL REFERENCES tenants(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (candidate_id, scheduled_at)
);
CREATE INDEX IF NOT EXISTS interviews_org_seq_idx ON interviews (organization_id, sequence_id);
CREATE INDEX IF NOT EXISTS interviews_org_sched_idx ON interviews (organization_id, scheduled_at);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure interviews table: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, iv service.Interview) (service.Interview, error) {
	const stmt = `
		INSERT INTO interviews (id, candidate_id, scheduled_at, status, calendar_link, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sequence_id`
	err := r.pool.QueryRow(ctx, stmt, iv.ID, iv.CandidateID, iv.ScheduledAt, iv.Status, iv.CalendarLink, iv.TenantID, iv.CreatedAt).Scan(&iv.SequenceID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.Interview{}, service.ErrSlotTaken
		}
		return service.Interview{}, fmt.Errorf("insert interview: %w", err)
	}
	return iv, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (service.Interview, error) {
	const query = `
		SELECT id, sequence_id, candidate_id, scheduled_at, status, calendar_link, organization_id, created_at
		FROM interviews WHERE id = $1`
	return scanInterview(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Interview, error) {
	conds := []string{}
	args := []any{}

	if opts.TenantID != nil {
		args = append(args, *opts.TenantID)
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if opts.CandidateID != nil {
		args = append(args, *opts.CandidateID)
		conds = append(conds, fmt.Sprintf("candidate_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Cursor > 0 {
		args = append(args, opts.Cursor)
		conds = append(conds, fmt.Sprintf("sequence_id > $%d", len(args)))
	}

	query := `SELECT id, sequence_id, candidate_id, scheduled_at, status, calendar_link, organization_id, created_at FROM interviews`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, fetch)
	query += fmt.Sprintf(" ORDER BY sequence_id ASC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []service.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, iv service.Interview) (service.Interview, error) {
	const stmt = `UPDATE interviews SET scheduled_at = $2, status = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, iv.ID, iv.ScheduledAt, iv.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.Interview{}, service.ErrSlotTaken
		}
		return service.Interview{}, fmt.Errorf("update interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.Interview{}, service.ErrNotFound
	}
	return iv, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsByCandidate(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM interviews WHERE candidate_id = $1)`, candidateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("interviews exist by candidate: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM interviews
		WHERE organization_id = $1 AND status = 'scheduled'
		AND scheduled_at >= $2 AND scheduled_at < $3`
	var n int64
	if err := r.pool.QueryRow(ctx, query, tenantID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scheduled interviews: %w", err)
	}
	return n, nil
}

func scanInterview(row pgx.Row) (service.Interview, error) {
	var iv service.Interview
	if err := row.Scan(&iv.ID, &iv.SequenceID, &iv.CandidateID, &iv.ScheduledAt, &iv.Status, &iv.CalendarLink, &iv.TenantID, &iv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Interview{}, service.ErrNotFound
		}
		return service.Interview{}, err
	}
	return iv, nil
}

var _ service.Repository = (*PostgresRepository)(nil)
