package service

import (
	"context"
	"fmt"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// StatsService computes role scoped dashboard statistics.
type StatsService struct {
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	tickets    repository.TicketRepository
}

// NewStatsService constructs the service.
func NewStatsService(accounts repository.AccountRepository, categories repository.CategoryRepository, tickets repository.TicketRepository) *StatsService {
	return &StatsService{accounts: accounts, categories: categories, tickets: tickets}
}

// Statistics returns the counters the caller's role is allowed to see.
func (s *StatsService) Statistics(ctx context.Context, p *domain.Principal) (map[string]int64, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	var (
		stats map[string]int64
		err   error
	)
	switch p.Account.Role {
	case domain.RoleAdmin, domain.RoleSupervisor:
		stats, err = s.global(ctx)
	case domain.RoleClient:
		stats, err = s.client(ctx, p.Account.ID)
	case domain.RoleTechnician:
		stats, err = s.technician(ctx, p.Account.ID)
	default:
		err = fmt.Errorf("unknown role %q", p.Account.Role)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}

func (s *StatsService) global(ctx context.Context) (map[string]int64, error) {
	byRole, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}
	categories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.tickets.CountByStatus(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		"total_users":             totalUsers,
		"total_clients":           byRole[domain.RoleClient],
		"total_techniciens":       byRole[domain.RoleTechnician],
		"total_categories":        categories,
		"total_reclamations":      counts.Total(),
		"reclamations_en_attente": counts.Of(domain.TicketStatusPending),
		"reclamations_en_cours":   counts.Of(domain.TicketStatusInProgress),
		"reclamations_resolues":   counts.Of(domain.TicketStatusResolved),
	}, nil
}

func (s *StatsService) client(ctx context.Context, accountID string) (map[string]int64, error) {
	counts, err := s.tickets.CountByStatus(ctx, repository.TicketFilter{AccountID: &accountID})
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		"mes_reclamations": counts.Total(),
		"en_attente":       counts.Of(domain.TicketStatusPending),
		"en_cours":         counts.Of(domain.TicketStatusInProgress),
		"resolues":         counts.Of(domain.TicketStatusResolved),
	}, nil
}

func (s *StatsService) technician(ctx context.Context, accountID string) (map[string]int64, error) {
	counts, err := s.tickets.CountByStatus(ctx, repository.TicketFilter{TechnicianID: &accountID})
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		"reclamations_assignees": counts.Total(),
		"en_cours":               counts.Of(domain.TicketStatusInProgress),
		"resolues":               counts.Of(domain.TicketStatusResolved),
	}, nil
}
