package permission

import "strings"

// Wildcard is the capability sentinel meaning "all capabilities granted".
const Wildcard = "*"

// Evaluator answers capability checks for a decoded identity.
//
// Pure and stateless after construction: safe for concurrent use from any
// number of requests. The administrator-role set is fixed configuration,
// compared case-insensitively; roles in it bypass capability checks
// entirely.
type Evaluator struct {
	adminRoles map[string]struct{}
}

func NewEvaluator(adminRoles []string) *Evaluator {
	set := make(map[string]struct{}, len(adminRoles))
	for _, r := range adminRoles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return &Evaluator{adminRoles: set}
}

// IsSuperAdmin reports whether the role is in the administrator-role set or
// the capability list carries the wildcard.
func (e *Evaluator) IsSuperAdmin(role string, caps []string) bool {
	if _, ok := e.adminRoles[strings.ToLower(strings.TrimSpace(role))]; ok {
		return true
	}
	for _, c := range caps {
		if c == Wildcard {
			return true
		}
	}
	return false
}

// Has reports whether the capability list grants required.
func (e *Evaluator) Has(caps []string, required string, role string) bool {
	if e.IsSuperAdmin(role, caps) {
		return true
	}
	for _, c := range caps {
		if c == required {
			return true
		}
	}
	return false
}

// HasAny reports whether any of required is granted.
func (e *Evaluator) HasAny(caps []string, required []string, role string) bool {
	if e.IsSuperAdmin(role, caps) {
		return true
	}
	for _, r := range required {
		if e.Has(caps, r, "") {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of required is granted.
func (e *Evaluator) HasAll(caps []string, required []string, role string) bool {
	if e.IsSuperAdmin(role, caps) {
		return true
	}
	for _, r := range required {
		if !e.Has(caps, r, "") {
			return false
		}
	}
	return true
}
