package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository/memstore"
)

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(f.Categories) != 6 {
		t.Errorf("len(Categories) = %d, want 6", len(f.Categories))
	}
	if len(f.Accounts) != 7 {
		t.Errorf("len(Accounts) = %d, want 7", len(f.Accounts))
	}
	if f.Accounts[0].Telephone != "221771234567" {
		t.Errorf("phone decoded as %q", f.Accounts[0].Telephone)
	}
}

func TestParseRejectsInvalidFixtures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "bad yaml", doc: "categories: [\n"},
		{name: "unnamed category", doc: "categories:\n  - description: x\n"},
		{name: "unknown role", doc: "accounts:\n  - email: a@b.sn\n    nom: A\n    prenom: B\n    telephone: \"1\"\n    role: root\n"},
		{name: "missing phone", doc: "accounts:\n  - email: a@b.sn\n    nom: A\n    prenom: B\n    role: client\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := "categories:\n  - nom: Compteur\naccounts: []\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Categories) != 1 || f.Categories[0].Name != "Compteur" {
		t.Fatalf("unexpected fixtures %+v", f)
	}
}

func TestSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(nil)
	seeder := NewSeeder(store.Accounts(), store.Categories(), bcrypt.MinCost, nil)
	f, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	first, err := seeder.Run(ctx, f, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Categories) != 6 || len(first.Accounts) != 7 {
		t.Fatalf("first run created %d categories, %d accounts", len(first.Categories), len(first.Accounts))
	}

	for _, created := range first.Accounts {
		acc, err := store.Accounts().GetByEmail(ctx, created.Email)
		if err != nil {
			t.Fatalf("GetByEmail(%s): %v", created.Email, err)
		}
		if !acc.IsFirstLogin || acc.TempPassword != created.TempPassword {
			t.Fatalf("account %s not onboarding: %+v", created.Email, acc)
		}
		if err := auth.ComparePassword(acc.PasswordHash, created.TempPassword); err != nil {
			t.Fatalf("temp password does not match hash for %s", created.Email)
		}
	}

	second, err := seeder.Run(ctx, f, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Categories) != 0 || len(second.Accounts) != 0 {
		t.Fatalf("second run created %+v", second)
	}

	counts, _ := store.Accounts().CountByRole(ctx)
	if counts[domain.RoleClient] != 3 || counts[domain.RoleTechnician] != 2 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestSeederReset(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(nil)
	seeder := NewSeeder(store.Accounts(), store.Categories(), bcrypt.MinCost, nil)
	f, _ := Default()

	if _, err := seeder.Run(ctx, f, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	admin, _ := store.Accounts().GetByEmail(ctx, "admin@senelec.sn")

	summary, err := seeder.Run(ctx, f, true)
	if err != nil {
		t.Fatalf("reset run: %v", err)
	}
	if len(summary.Categories) != 6 || len(summary.Accounts) != 7 {
		t.Fatalf("reset run created %d categories, %d accounts", len(summary.Categories), len(summary.Accounts))
	}
	again, _ := store.Accounts().GetByEmail(ctx, "admin@senelec.sn")
	if again.ID == admin.ID {
		t.Fatal("reset should recreate accounts")
	}
}
