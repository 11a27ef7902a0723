// Package access is the single place tenant-scoped authorization decisions
// are made. Every resource handler consults the same table-driven rule set
// instead of re-implementing role and tenant checks ad hoc. Decisions are
// pure functions of the principal and the target, with no hidden state.
package access

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Role is the fixed role enumeration carried by every authenticated principal.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleManager   Role = "manager"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRecruiter, RoleManager:
		return true
	}
	return false
}

// Principal is the authenticated caller's identity, derived per-request from
// a verified credential. It is never persisted.
type Principal struct {
	UserID   uuid.UUID
	Email    string
	Role     Role
	TenantID uuid.UUID
}

// Verb is the operation being attempted on a resource.
type Verb int

const (
	VerbRead Verb = iota
	VerbCreate
	VerbUpdate
	VerbDelete
)

func (v Verb) String() string {
	switch v {
	case VerbRead:
		return "read"
	case VerbCreate:
		return "create"
	case VerbUpdate:
		return "update"
	case VerbDelete:
		return "delete"
	}
	return fmt.Sprintf("verb(%d)", int(v))
}

// Kind is the resource type the verb targets.
type Kind int

const (
	KindTenant Kind = iota
	KindUser
	KindJob
	KindCandidate
	KindInterview
)

func (k Kind) String() string {
	switch k {
	case KindTenant:
		return "tenant"
	case KindUser:
		return "user"
	case KindJob:
		return "job"
	case KindCandidate:
		return "candidate"
	case KindInterview:
		return "interview"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action pairs a verb with the resource kind it targets.
type Action struct {
	Verb Verb
	Kind Kind
}

// Decision is the outcome of an authorization check. Reason is set only on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

type roleSet map[Role]struct{}

func roles(rs ...Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

var allRoles = roles(RoleAdmin, RoleRecruiter, RoleManager)

// rules gates each action by role. Recruiters may retract their own postings
// and candidates but may not cancel interviews unilaterally; that asymmetry
// is intentional. Managers are read-only across all resource types.
var rules = map[Kind]map[Verb]roleSet{
	KindTenant: {
		VerbRead:   allRoles,
		VerbCreate: roles(RoleAdmin),
		VerbUpdate: roles(RoleAdmin),
		VerbDelete: roles(RoleAdmin),
	},
	KindUser: {
		VerbRead:   roles(RoleAdmin),
		VerbCreate: roles(RoleAdmin),
		VerbUpdate: roles(RoleAdmin),
		VerbDelete: roles(RoleAdmin),
	},
	KindJob: {
		VerbRead:   allRoles,
		VerbCreate: roles(RoleAdmin, RoleRecruiter),
		VerbUpdate: roles(RoleAdmin, RoleRecruiter),
		VerbDelete: roles(RoleAdmin, RoleRecruiter),
	},
	KindCandidate: {
		VerbRead:   allRoles,
		VerbCreate: roles(RoleAdmin, RoleRecruiter),
		VerbUpdate: roles(RoleAdmin, RoleRecruiter),
		VerbDelete: roles(RoleAdmin, RoleRecruiter),
	},
	KindInterview: {
		VerbRead:   allRoles,
		VerbCreate: roles(RoleAdmin, RoleRecruiter),
		VerbUpdate: roles(RoleAdmin, RoleRecruiter),
		VerbDelete: roles(RoleAdmin),
	},
}

// ErrNoTenant is returned when a write requires a concrete tenant but none
// could be resolved from the request or the caller's identity.
var ErrNoTenant = errors.New("no tenant resolved for write")

// ErrTenantMismatch is returned when a non-admin caller targets a tenant
// other than their own on a write.
var ErrTenantMismatch = errors.New("cannot target another organization")

// Authorize decides whether the principal may perform the action. When
// resourceTenant is non-nil it is the owning tenant of an existing resource;
// non-admin principals are denied on any mismatch with their own tenant,
// reads included.
func Authorize(p Principal, a Action, resourceTenant *uuid.UUID) Decision {
	verbs, ok := rules[a.Kind]
	if !ok {
		return deny("unknown resource kind %s", a.Kind)
	}
	allowed, ok := verbs[a.Verb]
	if !ok {
		return deny("unknown verb %s on %s", a.Verb, a.Kind)
	}
	if _, ok := allowed[p.Role]; !ok {
		return deny("role %s may not %s %s", p.Role, a.Verb, a.Kind)
	}
	if p.Role != RoleAdmin && resourceTenant != nil && *resourceTenant != p.TenantID {
		return deny("%s belongs to another organization", a.Kind)
	}
	return allow()
}

// ResolveScope reconciles a caller-supplied tenant filter with role
// restrictions for read operations. Admins may filter by any tenant, or see
// across all tenants when no filter is supplied (nil result). Everyone else
// is forced to their own tenant; a differing requested id is ignored.
func ResolveScope(p Principal, requested *uuid.UUID) *uuid.UUID {
	if p.Role == RoleAdmin {
		return requested
	}
	own := p.TenantID
	return &own
}

// ResolveWriteTenant resolves the tenant a newly created resource will belong
// to. Unlike reads, a write always needs a concrete tenant: admins must
// supply one, and a non-admin caller supplying a foreign tenant id is denied
// rather than silently rescoped.
func ResolveWriteTenant(p Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if p.Role == RoleAdmin {
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, ErrNoTenant
		}
		return *requested, nil
	}
	if requested != nil && *requested != p.TenantID {
		return uuid.Nil, ErrTenantMismatch
	}
	return p.TenantID, nil
}

// CanViewResource is the post-retrieval check for single-resource fetches.
// When it fails for a non-admin the boundary reports not-found rather than
// forbidden so resource existence does not leak across tenants. That is the
// one place the two outcomes are deliberately conflated.
func CanViewResource(p Principal, resourceTenant uuid.UUID) bool {
	return p.Role == RoleAdmin || resourceTenant == p.TenantID
}
