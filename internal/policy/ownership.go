package policy

import "github.com/spec-kit/marketplace/internal/domain"

// AuthorizeOwnership decides whether a principal may act on a resource owned
// by ownerID. ADMIN always may; everyone else only on their own resources.
func AuthorizeOwnership(role domain.Role, subjectID, ownerID string) Outcome {
	if !role.Valid() {
		return Deny
	}
	if role == domain.RoleAdmin {
		return Allow
	}
	if subjectID == "" || subjectID != ownerID {
		return Deny
	}
	return Allow
}

// Resource names a listable collection.
type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
)

// Scope restricts a list query. When All is false only records owned by
// OwnerID are visible.
type Scope struct {
	All     bool
	OwnerID string
}

// ListScope returns the visibility of a collection for an identity. The
// boolean is false when the identity may not list the collection at all.
func ListScope(resource Resource, identity Identity) (Scope, bool) {
	if !identity.Role.Valid() || identity.SubjectID == "" {
		return Scope{}, false
	}
	switch resource {
	case ResourceProducts:
		if identity.Role == domain.RoleSeller {
			return Scope{OwnerID: identity.SubjectID}, true
		}
		return Scope{All: true}, true
	case ResourceOrders:
		if identity.Role == domain.RoleAdmin {
			return Scope{All: true}, true
		}
		return Scope{OwnerID: identity.SubjectID}, true
	}
	return Scope{}, false
}
