// Package authz holds the single authorization decision function. It is pure:
// identity resolution and resource loading happen before the call, so every
// policy rule is testable from a table of (identity, action) pairs.
package authz

// Role is a user's access level.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RolePublisher || r == RoleAdmin
}

// Identity is a resolved caller. A nil *Identity means anonymous.
type Identity struct {
	ID   string
	Role Role
}

// Verb is the CRUD action being attempted.
type Verb string

const (
	Create Verb = "create"
	Read   Verb = "read"
	Update Verb = "update"
	Delete Verb = "delete"
)

// Action describes one attempted operation against a resource.
// ResourceOwnerID is empty when the target has no owner semantics (or is not
// yet loaded, e.g. on Create of a top-level resource). RequiredRoles is empty
// when any authenticated role may attempt the verb.
type Action struct {
	Verb            Verb
	ResourceOwnerID string
	RequiredRoles   []Role
}

// Reason explains a denial.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize evaluates the policy rules in order:
//
//  1. anonymous callers may Read anything, and nothing else;
//  2. admins may do anything, ownership notwithstanding;
//  3. the caller's role must be in RequiredRoles when that set is non-empty;
//  4. when the resource has an owner, the caller must be that owner.
func Authorize(id *Identity, act Action) Decision {
	if id == nil {
		if act.Verb == Read {
			return allow
		}
		return deny(ReasonUnauthenticated)
	}
	if id.Role == RoleAdmin {
		return allow
	}
	if len(act.RequiredRoles) > 0 && !roleIn(id.Role, act.RequiredRoles) {
		return deny(ReasonForbidden)
	}
	if act.ResourceOwnerID != "" && id.ID != act.ResourceOwnerID {
		return deny(ReasonForbidden)
	}
	return allow
}

func roleIn(r Role, set []Role) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}
