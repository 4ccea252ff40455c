// seed creates the default categories and accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/senelec/reclamations-api/internal/config"
	"github.com/senelec/reclamations-api/internal/observability"
	"github.com/senelec/reclamations-api/internal/persistence"
	"github.com/senelec/reclamations-api/internal/repository"
	"github.com/senelec/reclamations-api/internal/seed"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		reset        bool
		fixturesPath string
	)
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.BoolVar(&reset, "reset", false, "delete every account and category before seeding")
	flagSet.StringVar(&fixturesPath, "fixtures", "", "YAML fixtures file (default: embedded fixtures)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	fixtures, err := seed.Load(fixturesPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := persistence.OpenDatabase(ctx, cfg.Postgres, "reclamations-seed", logger)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	pool := db.Pool
	seeder := seed.NewSeeder(
		repository.NewAccountRepository(pool, repository.SystemClock),
		repository.NewCategoryRepository(pool, repository.SystemClock),
		cfg.Auth.BcryptCost,
		logger,
	)
	summary, err := seeder.Run(ctx, fixtures, reset)
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		zap.Int("categories_created", len(summary.Categories)),
		zap.Int("accounts_created", len(summary.Accounts)))

	printSummary(summary)
	return nil
}

func printSummary(summary *seed.Summary) {
	fmt.Println("RÉSUMÉ:")
	fmt.Printf("   - %d catégories créées\n", len(summary.Categories))
	fmt.Printf("   - %d utilisateurs créés\n", len(summary.Accounts))
	if len(summary.Accounts) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("INFORMATIONS DE CONNEXION:")
	for _, a := range summary.Accounts {
		fmt.Printf("   %s: %s / %s (%s)\n", strings.ToUpper(string(a.Role)), a.Email, a.TempPassword, a.FullName)
	}
}
