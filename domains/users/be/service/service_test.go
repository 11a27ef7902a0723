package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hireline/talenttrack/domains/users/be/repo"
	"github.com/hireline/talenttrack/domains/users/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
)

type stubTenants struct {
	known map[uuid.UUID]bool
}

func (s stubTenants) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.known[id], nil
}

func newService(tenantIDs ...uuid.UUID) *service.Service {
	known := make(map[uuid.UUID]bool, len(tenantIDs))
	for _, id := range tenantIDs {
		known[id] = true
	}
	return service.New(repo.NewMemoryRepository(), stubTenants{known: known})
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	svc := newService(tenant)

	u, err := svc.Register(ctx, service.RegisterInput{
		Name:     "Admin Alpha",
		Email:    "Admin.Alpha@Empresa.com",
		Password: "s3cret-pass",
		Role:     access.RoleAdmin,
		TenantID: tenant,
	})
	require.NoError(t, err)
	require.Equal(t, "admin.alpha@empresa.com", u.Email)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "s3cret-pass", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "admin.alpha@empresa.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin.alpha@empresa.com", "wrong-pass")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@empresa.com", "s3cret-pass")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmailAndUnknownTenant(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	svc := newService(tenant)

	input := service.RegisterInput{
		Name:     "Rec",
		Email:    "rec@empresa.com",
		Password: "s3cret-pass",
		TenantID: tenant,
	}
	u, err := svc.Register(ctx, input)
	require.NoError(t, err)
	require.Equal(t, access.RoleRecruiter, u.Role)

	_, err = svc.Register(ctx, input)
	require.ErrorIs(t, err, service.ErrConflictEmail)

	input.Email = "other@empresa.com"
	input.TenantID = uuid.New()
	_, err = svc.Register(ctx, input)
	require.ErrorIs(t, err, service.ErrTenantUnknown)
}

func TestRegisterValidatesInput(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	svc := newService(tenant)

	var validationErr *service.ValidationError
	_, err := svc.Register(ctx, service.RegisterInput{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
		Role:     "owner",
		TenantID: tenant,
	})
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "name")
	require.Contains(t, validationErr.Fields, "email")
	require.Contains(t, validationErr.Fields, "password")
	require.Contains(t, validationErr.Fields, "role")
}

func TestPasswordHashNeverSerializes(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	svc := newService(tenant)

	u, err := svc.Register(ctx, service.RegisterInput{
		Name:     "Rec",
		Email:    "rec@empresa.com",
		Password: "s3cret-pass",
		TenantID: tenant,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "password")
	require.NotContains(t, string(raw), u.PasswordHash)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	svc := newService(tenant)

	u, err := svc.Register(ctx, service.RegisterInput{
		Name:     "Man",
		Email:    "man@empresa.com",
		Password: "s3cret-pass",
		Role:     access.RoleManager,
		TenantID: tenant,
	})
	require.NoError(t, err)

	admin := access.RoleAdmin
	updated, err := svc.Update(ctx, u.ID, service.UpdateInput{Role: &admin})
	require.NoError(t, err)
	require.Equal(t, access.RoleAdmin, updated.Role)
	require.Equal(t, u.Email, updated.Email)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}
