package identity

import "testing"

func TestParseRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{in: "customer", want: RoleCustomer, wantOK: true},
		{in: "admin", want: RoleAdmin, wantOK: true},
		{in: " Admin ", want: RoleAdmin, wantOK: true},
		{in: "CUSTOMER", want: RoleCustomer, wantOK: true},
		{in: "superuser", want: RoleCustomer, wantOK: false},
		{in: "", want: RoleCustomer, wantOK: false},
	}

	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseRole(%q)=(%v,%v) want=(%v,%v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestRoleSatisfies(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.Satisfies(RoleCustomer) {
		t.Fatalf("admin should satisfy customer requirement")
	}
	if !RoleAdmin.Satisfies(RoleAdmin) {
		t.Fatalf("admin should satisfy admin requirement")
	}
	if RoleCustomer.Satisfies(RoleAdmin) {
		t.Fatalf("customer must not satisfy admin requirement")
	}
	if !RoleCustomer.Satisfies(RoleCustomer) {
		t.Fatalf("customer should satisfy customer requirement")
	}
	if Role("root").Satisfies(RoleAdmin) {
		t.Fatalf("unknown role must satisfy nothing")
	}
	if RoleAdmin.Satisfies(Role("root")) {
		t.Fatalf("unknown requirement must never be satisfied")
	}
}

func TestSanitizedStripsSecrets(t *testing.T) {
	t.Parallel()

	u := User{
		ID:                   "u1",
		Email:                "a@example.com",
		PasswordHash:         "$argon2id$...",
		VerificationCodeHash: "deadbeef",
	}

	got := u.Sanitized()
	if got.PasswordHash != "" || got.VerificationCodeHash != "" {
		t.Fatalf("expected secrets stripped, got %+v", got)
	}
	if got.ID != "u1" || got.Email != "a@example.com" {
		t.Fatalf("non-secret fields must be preserved")
	}
}
