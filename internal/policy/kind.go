// Package policy decides route admission and resource ownership for the
// three marketplace roles.
package policy

import "github.com/spec-kit/marketplace/internal/domain"

// RouteKind classifies a route by the roles it admits.
type RouteKind string

const (
	KindPublic        RouteKind = "PUBLIC"
	KindAdminOnly     RouteKind = "ADMIN_ONLY"
	KindSellerOnly    RouteKind = "SELLER_ONLY"
	KindBuyerOnly     RouteKind = "BUYER_ONLY"
	KindBuyerPrivate  RouteKind = "BUYER_PRIVATE"
	KindOwnerScoped   RouteKind = "OWNER_SCOPED"
	KindAuthenticated RouteKind = "AUTHENTICATED"
)

// Valid reports whether k is a known kind.
func (k RouteKind) Valid() bool {
	switch k {
	case KindPublic, KindAdminOnly, KindSellerOnly, KindBuyerOnly,
		KindBuyerPrivate, KindOwnerScoped, KindAuthenticated:
		return true
	}
	return false
}

// roleTier reports kinds whose denial sends the caller to their own landing area.
func (k RouteKind) roleTier() bool {
	return k == KindAdminOnly || k == KindSellerOnly || k == KindBuyerOnly
}

// Outcome is the result of a policy evaluation.
type Outcome string

const (
	Allow    Outcome = "ALLOW"
	Deny     Outcome = "DENY"
	Redirect Outcome = "REDIRECT"
)

// Identity is the verified principal forwarded to handlers.
type Identity struct {
	SubjectID string
	Email     string
	Role      domain.Role
}

// Decision is the gatekeeper-facing result of Decide.
type Decision struct {
	Outcome  Outcome
	Location string
	// Anonymous is set when the request carried no valid identity.
	Anonymous bool
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

const (
	LoginPath     = "/login"
	ForbiddenPath = "/unauthorized"
)

// LandingPath returns the default dashboard area for a role.
func LandingPath(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/dashboard/admin"
	case domain.RoleSeller:
		return "/dashboard/seller"
	case domain.RoleBuyer:
		return "/dashboard/buyer"
	}
	return LoginPath
}
