package policy

import (
	"net/http"
	"path"
	"strings"
)

// Rule maps a path prefix, optionally restricted to methods, to a route kind.
type Rule struct {
	Prefix  string
	Exact   bool
	Methods []string
	Kind    RouteKind
}

// DefaultRules is the route table for the marketplace. The first matching rule
// wins, so more specific prefixes come first. Paths that match nothing are
// treated as AUTHENTICATED; public routes are always listed explicitly.
var DefaultRules = []Rule{
	{Prefix: "/", Exact: true, Kind: KindPublic},
	{Prefix: "/login", Exact: true, Kind: KindPublic},
	{Prefix: "/register", Exact: true, Kind: KindPublic},
	{Prefix: ForbiddenPath, Exact: true, Kind: KindPublic},
	{Prefix: "/health", Kind: KindPublic},
	{Prefix: "/metrics", Exact: true, Kind: KindPublic},
	{Prefix: "/api/auth", Kind: KindPublic},
	{Prefix: "/api/logout", Exact: true, Kind: KindPublic},
	{Prefix: "/api/me", Exact: true, Kind: KindPublic},

	{Prefix: "/dashboard/admin", Kind: KindAdminOnly},
	{Prefix: "/dashboard/seller", Kind: KindSellerOnly},
	{Prefix: "/dashboard/buyer/cart", Kind: KindBuyerPrivate},
	{Prefix: "/dashboard/buyer", Kind: KindBuyerOnly},
	{Prefix: "/dashboard", Kind: KindAuthenticated},

	{Prefix: "/api/admin", Kind: KindAdminOnly},
	{Prefix: "/api/products", Methods: []string{http.MethodPost}, Kind: KindSellerOnly},
	{Prefix: "/api/products", Methods: []string{http.MethodPatch, http.MethodPut, http.MethodDelete}, Kind: KindOwnerScoped},
	{Prefix: "/api/products", Kind: KindAuthenticated},
	{Prefix: "/api/orders", Methods: []string{http.MethodPost}, Kind: KindBuyerPrivate},
	{Prefix: "/api/orders", Kind: KindAuthenticated},
	{Prefix: "/api/profile", Kind: KindAuthenticated},
}

// Table classifies request paths.
type Table struct {
	rules []Rule
}

// NewTable normalizes and copies the given rules.
func NewTable(rules []Rule) *Table {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		rule := Rule{Prefix: normalizePath(r.Prefix), Exact: r.Exact, Kind: r.Kind}
		for _, m := range r.Methods {
			rule.Methods = append(rule.Methods, strings.ToUpper(m))
		}
		normalized = append(normalized, rule)
	}
	return &Table{rules: normalized}
}

// Classify returns the kind of a path for read requests.
func (t *Table) Classify(p string) RouteKind {
	return t.ClassifyRequest(http.MethodGet, p)
}

// ClassifyRequest returns the kind of a method and path pair.
func (t *Table) ClassifyRequest(method, p string) RouteKind {
	method = strings.ToUpper(method)
	if method == http.MethodHead || method == http.MethodOptions || method == "" {
		method = http.MethodGet
	}
	p = normalizePath(p)

	for _, rule := range t.rules {
		if !rule.matchesPath(p) || !rule.matchesMethod(method) {
			continue
		}
		return rule.Kind
	}
	return KindAuthenticated
}

func (r Rule) matchesPath(p string) bool {
	if r.Exact {
		return p == r.Prefix
	}
	if r.Prefix == "/" {
		return true
	}
	return p == r.Prefix || strings.HasPrefix(p, r.Prefix+"/")
}

func (r Rule) matchesMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Clean("/" + p))
}
