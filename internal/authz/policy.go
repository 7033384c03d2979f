package authz

// APIRule protects a single method and path template combination.
type APIRule struct {
	Method  string
	Pattern string
	Roles   []Role
}

// PageRule protects a browser-facing path template.
type PageRule struct {
	Pattern string
	Roles   []Role
}

// Allows reports whether the role is in the rule's allowed set.
func (r APIRule) Allows(role Role) bool { return roleListed(r.Roles, role) }

// Allows reports whether the role is in the rule's allowed set.
func (r PageRule) Allows(role Role) bool { return roleListed(r.Roles, role) }

func roleListed(roles []Role, role Role) bool {
	for _, allowed := range roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Policy is the immutable route-authorization table. It is built once at
// startup and only read afterwards; rules are kept in declaration order and
// the first structural match wins, so overlapping templates resolve by
// position rather than by accident of map iteration.
type Policy struct {
	apiPrefix   string
	apiRules    []APIRule
	pageRules   []PageRule
	authPages   []string
	bypassPages []string
}

// PolicyConfig carries the declarative rule tables for NewPolicy.
type PolicyConfig struct {
	APIPrefix   string
	APIRules    []APIRule
	PageRules   []PageRule
	AuthPages   []string
	BypassPages []string
}

// NewPolicy copies the configured tables into an immutable Policy.
func NewPolicy(cfg PolicyConfig) *Policy {
	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	p := &Policy{
		apiPrefix:   prefix,
		apiRules:    make([]APIRule, len(cfg.APIRules)),
		pageRules:   make([]PageRule, len(cfg.PageRules)),
		authPages:   make([]string, len(cfg.AuthPages)),
		bypassPages: make([]string, len(cfg.BypassPages)),
	}
	copy(p.apiRules, cfg.APIRules)
	copy(p.pageRules, cfg.PageRules)
	copy(p.authPages, cfg.AuthPages)
	copy(p.bypassPages, cfg.BypassPages)
	return p
}

// APIPrefix returns the path prefix that classifies a request as an API call.
func (p *Policy) APIPrefix() string { return p.apiPrefix }

// FindAPIRule returns the first rule whose method matches exactly and whose
// template matches the path. ok is false when the route is unprotected.
func (p *Policy) FindAPIRule(method, path string) (APIRule, bool) {
	segments := splitPath(path)
	for _, rule := range p.apiRules {
		if rule.Method != method {
			continue
		}
		if matchSegments(splitPath(rule.Pattern), segments) {
			return rule, true
		}
	}
	return APIRule{}, false
}

// FindPageRule returns the first page rule matching the path.
func (p *Policy) FindPageRule(path string) (PageRule, bool) {
	segments := splitPath(path)
	for _, rule := range p.pageRules {
		if matchSegments(splitPath(rule.Pattern), segments) {
			return rule, true
		}
	}
	return PageRule{}, false
}

// IsAuthPage reports whether the path is a login/register style page that a
// request with a valid credential should be redirected away from.
func (p *Policy) IsAuthPage(path string) bool {
	return matchAny(p.authPages, path)
}

// IsBypassPage reports whether the path belongs to the credential
// establishment flow and must stay reachable regardless of other rules.
func (p *Policy) IsBypassPage(path string) bool {
	return matchAny(p.bypassPages, path)
}

func matchAny(patterns []string, path string) bool {
	segments := splitPath(path)
	for _, pattern := range patterns {
		if matchSegments(splitPath(pattern), segments) {
			return true
		}
	}
	return false
}

// DefaultPolicy is the FactEcho route table. Order matters: more specific
// templates are declared before overlapping parameterized ones.
func DefaultPolicy() *Policy {
	everyone := []Role{RoleUser, RoleAuthor, RoleAdmin}
	writers := []Role{RoleAuthor, RoleAdmin}
	admins := []Role{RoleAdmin}

	return NewPolicy(PolicyConfig{
		APIPrefix: "/api",
		APIRules: []APIRule{
			{Method: "GET", Pattern: "/api/users/me", Roles: everyone},
			{Method: "GET", Pattern: "/api/users", Roles: admins},
			{Method: "GET", Pattern: "/api/users/:userId", Roles: admins},
			{Method: "PATCH", Pattern: "/api/users/:userId/role", Roles: admins},
			{Method: "DELETE", Pattern: "/api/users/:userId", Roles: admins},
			{Method: "GET", Pattern: "/api/users/:userId/permissions", Roles: admins},
			{Method: "PATCH", Pattern: "/api/users/:userId/permissions", Roles: admins},

			{Method: "GET", Pattern: "/api/articles/saved", Roles: everyone},
			{Method: "POST", Pattern: "/api/articles/:articleId/save", Roles: everyone},
			{Method: "DELETE", Pattern: "/api/articles/:articleId/save", Roles: everyone},
			{Method: "POST", Pattern: "/api/articles", Roles: writers},
			{Method: "PATCH", Pattern: "/api/articles/:articleId", Roles: writers},
			{Method: "DELETE", Pattern: "/api/articles/:articleId", Roles: writers},

			{Method: "POST", Pattern: "/api/categories", Roles: admins},
			{Method: "PATCH", Pattern: "/api/categories/:categoryId", Roles: admins},
			{Method: "DELETE", Pattern: "/api/categories/:categoryId", Roles: admins},

			{Method: "POST", Pattern: "/api/auth/logout", Roles: everyone},

			{Method: "GET", Pattern: "/api/jobs/health", Roles: admins},
		},
		PageRules: []PageRule{
			{Pattern: "/admin", Roles: admins},
			{Pattern: "/admin/:section", Roles: admins},
			{Pattern: "/dashboard", Roles: writers},
			{Pattern: "/articles/new", Roles: writers},
			{Pattern: "/articles/:articleId/edit", Roles: writers},
			{Pattern: "/profile", Roles: everyone},
			{Pattern: "/saved", Roles: everyone},
		},
		AuthPages: []string{
			"/auth/login",
			"/auth/register",
			"/auth/forgot-password",
		},
		BypassPages: []string{
			"/auth/oauth-success",
			"/auth/refresh",
		},
	})
}
