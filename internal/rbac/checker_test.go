package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"teacher", "course:create", true},
		{"teacher", "schedule:write", true},
		{"teacher", "attempt:create", false},
		{"student", "attempt:create", true},
		{"student", "course:view", true},
		{"student", "course:create", false},
		{"student", "schedule:view", false},
		{"admin", "course:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardMatch(t *testing.T) {
	c := NewChecker(map[string][]string{
		"admin":  {"*"},
		"grader": {"attempt:*"},
	})
	if !c.Has("admin", "anything:at:all") {
		t.Error("* should match everything")
	}
	if !c.Has("grader", "attempt:submit") {
		t.Error("prefix wildcard should match attempt:submit")
	}
	if c.Has("grader", "course:view") {
		t.Error("prefix wildcard should not match other namespaces")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "course:create", "attempt:create") {
		t.Error("Any should pass when one permission matches")
	}
	if c.Any("student", "course:create", "schedule:write") {
		t.Error("Any should fail when none match")
	}
}
