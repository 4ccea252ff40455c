// Package seed loads the default categories and accounts.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the seed document.
type Fixtures struct {
	Categories []CategoryFixture `yaml:"categories"`
	Accounts   []AccountFixture  `yaml:"accounts"`
}

// CategoryFixture describes one category.
type CategoryFixture struct {
	Name        string `yaml:"nom"`
	Description string `yaml:"description"`
}

// AccountFixture describes one account. Its password is generated.
type AccountFixture struct {
	Username       string `yaml:"username"`
	Email          string `yaml:"email"`
	Nom            string `yaml:"nom"`
	Prenom         string `yaml:"prenom"`
	Telephone      string `yaml:"telephone"`
	Role           string `yaml:"role"`
	Adresse        string `yaml:"adresse"`
	NumeroCompteur string `yaml:"numero_compteur"`
}

// Parse decodes and validates a fixtures document.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d: nom is required", i)
		}
	}
	for i, a := range f.Accounts {
		if a.Email == "" || a.Telephone == "" || a.Nom == "" || a.Prenom == "" {
			return nil, fmt.Errorf("account %d: nom, prenom, email and telephone are required", i)
		}
		if _, err := domain.ParseRole(a.Role); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Email, err)
		}
	}
	return &f, nil
}

// Default returns the embedded fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// Load reads fixtures from path, or the embedded set when path is empty.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// CreatedAccount reports an account created by a run with its temp password.
type CreatedAccount struct {
	FullName     string
	Email        string
	Role         domain.Role
	TempPassword string
}

// Summary lists what a run created.
type Summary struct {
	Categories []string
	Accounts   []CreatedAccount
}

// Seeder applies fixtures with get-or-create semantics.
type Seeder struct {
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder constructs a seeder.
func NewSeeder(accounts repository.AccountRepository, categories repository.CategoryRepository, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{accounts: accounts, categories: categories, bcryptCost: bcryptCost, logger: logger}
}

// Run applies f. With reset, every account and category is deleted first,
// which cascades to their complaints.
func (s *Seeder) Run(ctx context.Context, f *Fixtures, reset bool) (*Summary, error) {
	if reset {
		accounts, err := s.accounts.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("reset accounts: %w", err)
		}
		categories, err := s.categories.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("reset categories: %w", err)
		}
		s.logger.Info("existing data deleted", zap.Int64("accounts", accounts), zap.Int64("categories", categories))
	}

	summary := &Summary{}
	for _, c := range f.Categories {
		category, created, err := s.categories.GetOrCreate(ctx, strings.TrimSpace(c.Name), c.Description)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", c.Name, err)
		}
		if created {
			summary.Categories = append(summary.Categories, category.Name)
		}
	}

	for _, a := range f.Accounts {
		created, err := s.ensureAccount(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Email, err)
		}
		if created != nil {
			summary.Accounts = append(summary.Accounts, *created)
		}
	}
	return summary, nil
}

func (s *Seeder) ensureAccount(ctx context.Context, a AccountFixture) (*CreatedAccount, error) {
	if _, err := s.accounts.GetByEmail(ctx, a.Email); err == nil {
		return nil, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role, err := domain.ParseRole(a.Role)
	if err != nil {
		return nil, err
	}
	plain, err := auth.GenerateTempPassword(auth.TempPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(plain, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:    a.Username,
		Email:       a.Email,
		Phone:       a.Telephone,
		LastName:    a.Nom,
		FirstName:   a.Prenom,
		Address:     a.Adresse,
		MeterNumber: a.NumeroCompteur,
		Role:        role,
		IsActive:    true,
	}
	account.IssueTempPassword(plain, hash)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return &CreatedAccount{
		FullName:     account.FullName(),
		Email:        account.Email,
		Role:         account.Role,
		TempPassword: plain,
	}, nil
}
