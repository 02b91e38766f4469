package permission

import (
	"encoding/json"
	"reflect"
	"testing"
)

func newEval() *Evaluator {
	return NewEvaluator([]string{"Super Admin"})
}

func TestHas_WildcardGrantsEverything(t *testing.T) {
	e := newEval()
	for _, required := range []string{"anything", "games:add", "merchants:delete"} {
		if !e.Has([]string{"*"}, required, "") {
			t.Errorf("wildcard should grant %q", required)
		}
	}
}

func TestHas_ExactMembershipOnly(t *testing.T) {
	e := newEval()
	caps := []string{"games:view"}
	if !e.Has(caps, "games:view", "") {
		t.Fatalf("expected exact capability to be granted")
	}
	if e.Has(caps, "games:add", "") {
		t.Fatalf("games:view must not grant games:add")
	}
}

func TestHas_AdminRoleOverridesEmptyCapabilities(t *testing.T) {
	e := NewEvaluator([]string{"admin"})
	if !e.Has(nil, "x", "admin") {
		t.Fatalf("expected admin role override with empty capabilities")
	}
}

func TestHas_AdminRoleCaseInsensitive(t *testing.T) {
	e := newEval()
	for _, role := range []string{"Super Admin", "super admin", "SUPER ADMIN", "sUpEr AdMiN"} {
		if !e.Has([]string{"games:view"}, "merchants:delete", role) {
			t.Errorf("role %q should pass every check", role)
		}
		if !e.IsSuperAdmin(role, nil) {
			t.Errorf("role %q should be super admin", role)
		}
	}
	if e.IsSuperAdmin("operator", nil) {
		t.Fatalf("operator must not be super admin")
	}
	if !e.IsSuperAdmin("", []string{"*"}) {
		t.Fatalf("wildcard capabilities imply super admin")
	}
}

func TestHasAnyHasAll(t *testing.T) {
	e := newEval()
	caps := []string{"games:view", "players:view"}

	if !e.HasAny(caps, []string{"games:add", "players:view"}, "") {
		t.Fatalf("HasAny should match players:view")
	}
	if e.HasAny(caps, []string{"games:add", "players:add"}, "") {
		t.Fatalf("HasAny should fail when nothing matches")
	}

	if !e.HasAll(caps, []string{"games:view", "players:view"}, "") {
		t.Fatalf("HasAll should pass when all present")
	}
	if e.HasAll(caps, []string{"games:view", "players:add"}, "") {
		t.Fatalf("HasAll should fail when one is missing")
	}

	// hasAny(caps, [a,b]) == has(a) || has(b); hasAll requires both.
	a, b := "games:view", "players:add"
	want := e.Has(caps, a, "") || e.Has(caps, b, "")
	if got := e.HasAny(caps, []string{a, b}, ""); got != want {
		t.Fatalf("HasAny = %v, want %v", got, want)
	}

	if !e.HasAny(nil, []string{"anything"}, "super admin") {
		t.Fatalf("HasAny should short-circuit for admin role")
	}
	if !e.HasAll(nil, []string{"a", "b"}, "super admin") {
		t.Fatalf("HasAll should short-circuit for admin role")
	}
}

func TestNormalizeCapabilities(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["games:view","players:view"]`, []string{"games:view", "players:view"}},
		{"encoded string", `"[\"games:view\",\"players:view\"]"`, []string{"games:view", "players:view"}},
		{"wildcard", `["*"]`, []string{"*"}},
		{"empty array", `[]`, []string{}},
		{"null", `null`, []string{}},
		{"plain string", `"games:view"`, []string{}},
		{"number", `42`, []string{}},
		{"drops empties", `["games:view",""]`, []string{"games:view"}},
	}
	for _, tc := range cases {
		got := NormalizeCapabilities(json.RawMessage(tc.raw))
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if got := NormalizeCapabilities(nil); !reflect.DeepEqual(got, []string{}) {
		t.Errorf("nil: got %v", got)
	}
}
