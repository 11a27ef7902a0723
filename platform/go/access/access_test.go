package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func principal(role Role, tenant uuid.UUID) Principal {
	return Principal{UserID: uuid.New(), Email: "u@example.com", Role: role, TenantID: tenant}
}

func TestAuthorizeRoleTable(t *testing.T) {
	tenant := uuid.New()

	cases := []struct {
		name    string
		role    Role
		action  Action
		allowed bool
	}{
		{"recruiter creates job", RoleRecruiter, Action{VerbCreate, KindJob}, true},
		{"recruiter deletes job", RoleRecruiter, Action{VerbDelete, KindJob}, true},
		{"recruiter creates candidate", RoleRecruiter, Action{VerbCreate, KindCandidate}, true},
		{"recruiter deletes candidate", RoleRecruiter, Action{VerbDelete, KindCandidate}, true},
		{"recruiter updates interview", RoleRecruiter, Action{VerbUpdate, KindInterview}, true},
		{"recruiter deletes interview", RoleRecruiter, Action{VerbDelete, KindInterview}, false},
		{"recruiter creates tenant", RoleRecruiter, Action{VerbCreate, KindTenant}, false},
		{"recruiter lists users", RoleRecruiter, Action{VerbRead, KindUser}, false},
		{"manager reads job", RoleManager, Action{VerbRead, KindJob}, true},
		{"manager creates job", RoleManager, Action{VerbCreate, KindJob}, false},
		{"manager updates candidate", RoleManager, Action{VerbUpdate, KindCandidate}, false},
		{"manager deletes interview", RoleManager, Action{VerbDelete, KindInterview}, false},
		{"admin deletes interview", RoleAdmin, Action{VerbDelete, KindInterview}, true},
		{"admin creates tenant", RoleAdmin, Action{VerbCreate, KindTenant}, true},
		{"admin lists users", RoleAdmin, Action{VerbRead, KindUser}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := Authorize(principal(tc.role, tenant), tc.action, &tenant)
			require.Equal(t, tc.allowed, dec.Allowed)
			if !tc.allowed {
				require.NotEmpty(t, dec.Reason)
			}
		})
	}
}

func TestAuthorizeTenantIsolation(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	for _, role := range []Role{RoleRecruiter, RoleManager} {
		for _, verb := range []Verb{VerbRead, VerbUpdate, VerbDelete} {
			dec := Authorize(principal(role, own), Action{verb, KindJob}, &other)
			require.False(t, dec.Allowed, "role %s verb %s must be denied across tenants", role, verb)
		}
	}

	// Admin crosses tenants freely.
	dec := Authorize(principal(RoleAdmin, own), Action{VerbDelete, KindJob}, &other)
	require.True(t, dec.Allowed)
}

func TestResolveScope(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	t.Run("admin without filter sees everything", func(t *testing.T) {
		require.Nil(t, ResolveScope(principal(RoleAdmin, own), nil))
	})

	t.Run("admin keeps requested filter", func(t *testing.T) {
		scope := ResolveScope(principal(RoleAdmin, own), &other)
		require.NotNil(t, scope)
		require.Equal(t, other, *scope)
	})

	t.Run("recruiter forced to own tenant", func(t *testing.T) {
		scope := ResolveScope(principal(RoleRecruiter, own), &other)
		require.NotNil(t, scope)
		require.Equal(t, own, *scope)
	})

	t.Run("manager without filter scoped to own tenant", func(t *testing.T) {
		scope := ResolveScope(principal(RoleManager, own), nil)
		require.NotNil(t, scope)
		require.Equal(t, own, *scope)
	})
}

func TestResolveWriteTenant(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	t.Run("admin must supply a tenant", func(t *testing.T) {
		_, err := ResolveWriteTenant(principal(RoleAdmin, own), nil)
		require.ErrorIs(t, err, ErrNoTenant)
	})

	t.Run("admin targets requested tenant", func(t *testing.T) {
		got, err := ResolveWriteTenant(principal(RoleAdmin, own), &other)
		require.NoError(t, err)
		require.Equal(t, other, got)
	})

	t.Run("recruiter may not target another tenant", func(t *testing.T) {
		_, err := ResolveWriteTenant(principal(RoleRecruiter, own), &other)
		require.ErrorIs(t, err, ErrTenantMismatch)
	})

	t.Run("recruiter defaults to own tenant", func(t *testing.T) {
		got, err := ResolveWriteTenant(principal(RoleRecruiter, own), nil)
		require.NoError(t, err)
		require.Equal(t, own, got)
	})
}

func TestCanViewResource(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	require.True(t, CanViewResource(principal(RoleAdmin, own), other))
	require.True(t, CanViewResource(principal(RoleManager, own), own))
	require.False(t, CanViewResource(principal(RoleManager, own), other))
	require.False(t, CanViewResource(principal(RoleRecruiter, own), other))
}
