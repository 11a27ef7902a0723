package repo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/hireline/talenttrack/domains/jobs/be/service"
	tenantsrepo "github.com/hireline/talenttrack/domains/tenants/be/repo"
	tenantsservice "github.com/hireline/talenttrack/domains/tenants/be/service"
)

func mustTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok || url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("create test pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func seedTenant(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	tenants, err := tenantsrepo.NewPostgresRepository(ctx, pool)
	require.NoError(t, err)

	created, err := tenants.Create(ctx, tenantsservice.Tenant{
		ID:        uuid.New(),
		Name:      "jobs-it-" + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tenants.Delete(context.Background(), created.ID) })
	return created.ID
}

func TestPostgresListPagination(t *testing.T) {
	ctx := context.Background()
	pool := mustTestPool(t)
	tenantID := seedTenant(t, ctx, pool)

	repo, err := NewPostgresRepository(ctx, pool)
	require.NoError(t, err)

	var created []service.Job
	for i := 0; i < 7; i++ {
		status := service.StatusOpen
		if i%2 == 1 {
			status = service.StatusClosed
		}
		j, err := repo.Create(ctx, service.Job{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("Engineer %d", i),
			Status:    status,
			TenantID:  tenantID,
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		created = append(created, j)
	}
	t.Cleanup(func() {
		for _, j := range created {
			_ = repo.Delete(context.Background(), j.ID)
		}
	})

	// Walk the whole tenant in pages of three, checking strict sequence order.
	var seen []int64
	cursor := int64(0)
	for {
		rows, err := repo.List(ctx, service.ListOptions{TenantID: &tenantID, Cursor: cursor}, 4)
		require.NoError(t, err)
		if len(rows) > 3 {
			rows = rows[:3]
		}
		if len(rows) == 0 {
			break
		}
		for _, j := range rows {
			require.Greater(t, j.SequenceID, cursor)
			seen = append(seen, j.SequenceID)
			cursor = j.SequenceID
		}
		if len(rows) < 3 {
			break
		}
	}
	require.Len(t, seen, 7)
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i], seen[i-1])
	}

	closed := service.StatusClosed
	rows, err := repo.List(ctx, service.ListOptions{TenantID: &tenantID, Status: &closed}, 50)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, j := range rows {
		require.Equal(t, service.StatusClosed, j.Status)
	}

	counts, err := repo.CountByStatus(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, int64(4), counts[service.StatusOpen])
	require.Equal(t, int64(3), counts[service.StatusClosed])

	exists, err := repo.ExistsByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, exists)
}
