package authz

import "testing"

func TestParseRole(t *testing.T) {
	for _, v := range []int{1, 2, 3} {
		role, err := ParseRole(v)
		if err != nil {
			t.Fatalf("ParseRole(%d): %v", v, err)
		}
		if !role.Valid() {
			t.Fatalf("ParseRole(%d) returned invalid role", v)
		}
	}
	for _, v := range []int{0, -1, 4, 99} {
		if _, err := ParseRole(v); err == nil {
			t.Fatalf("ParseRole(%d) should fail", v)
		}
	}
}

func TestRoleString(t *testing.T) {
	cases := map[Role]string{
		RoleNone:   "none",
		RoleUser:   "user",
		RoleAuthor: "author",
		RoleAdmin:  "admin",
		Role(42):   "none",
	}
	for role, want := range cases {
		if got := role.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", int(role), got, want)
		}
	}
}
