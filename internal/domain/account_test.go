package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "superviseur", want: RoleSupervisor},
		{in: "Supervisor", want: RoleSupervisor},
		{in: "client", want: RoleClient},
		{in: "technician", want: RoleTechnician},
		{in: "technicien", want: RoleTechnician},
		{in: "root", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleBackOffice(t *testing.T) {
	for _, role := range Roles {
		want := role == RoleAdmin || role == RoleSupervisor
		if got := role.IsBackOffice(); got != want {
			t.Errorf("%s.IsBackOffice() = %v, want %v", role, got, want)
		}
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}
	if Role("guest").Valid() {
		t.Error("guest should not be valid")
	}
}

func TestAccountOnboarding(t *testing.T) {
	acc := &Account{FirstName: "Ibrahima", LastName: "Ndiaye"}
	if acc.FullName() != "Ibrahima Ndiaye" {
		t.Fatalf("FullName() = %q", acc.FullName())
	}

	acc.IssueTempPassword("Ab12Cd34", "hash-1")
	if !acc.IsFirstLogin || acc.TempPassword != "Ab12Cd34" || acc.PasswordHash != "hash-1" {
		t.Fatalf("unexpected state after issue: %+v", acc)
	}

	acc.CompleteOnboarding("hash-2")
	if acc.IsFirstLogin || acc.TempPassword != "" || acc.PasswordHash != "hash-2" {
		t.Fatalf("unexpected state after onboarding: %+v", acc)
	}
}

func TestPrincipalHasRole(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.HasRole(RoleAdmin) {
		t.Error("nil principal has no role")
	}
	p := &Principal{Account: &Account{Role: RoleSupervisor}}
	if !p.HasRole(RoleAdmin, RoleSupervisor) {
		t.Error("supervisor should match")
	}
	if p.HasRole(RoleAdmin) {
		t.Error("supervisor is not admin")
	}
}
