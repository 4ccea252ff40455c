package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStore(t *testing.T) (*Store, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(clock.Now), clock
}

func mustAccount(t *testing.T, s *Store, email, phone string, role domain.Role) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		Email:     email,
		Phone:     phone,
		LastName:  "Ndiaye",
		FirstName: "Awa",
		Role:      role,
		IsActive:  true,
	}
	if err := s.Accounts().Create(context.Background(), acc); err != nil {
		t.Fatalf("create account %s: %v", email, err)
	}
	return acc
}

func mustCategory(t *testing.T, s *Store, name string) *domain.Category {
	t.Helper()
	cat := &domain.Category{Name: name, IsActive: true}
	if err := s.Categories().Create(context.Background(), cat); err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return cat
}

func mustTicket(t *testing.T, s *Store, accountID, categoryID string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{Description: "Coupure de courant", AccountID: accountID, CategoryID: categoryID}
	if err := s.Tickets().Create(context.Background(), ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestConcurrentAccountCreationKeepsEmailUnique(t *testing.T) {
	s, _ := newStore(t)

	const workers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		violations int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Accounts().Create(context.Background(), &domain.Account{
				Email: "dup@senelec.sn",
				Phone: fmt.Sprintf("22170000%04d", i),
				Role:  domain.RoleClient,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if uv, ok := repository.AsUniqueViolation(err); ok && uv.Field == repository.FieldEmail {
				violations++
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 || violations != workers-1 {
		t.Fatalf("successes=%d violations=%d", successes, violations)
	}
}

func TestAccountUniqueFields(t *testing.T) {
	s, _ := newStore(t)
	mustAccount(t, s, "a@senelec.sn", "221771111111", domain.RoleClient)

	err := s.Accounts().Create(context.Background(), &domain.Account{Email: "b@senelec.sn", Phone: "221771111111"})
	uv, ok := repository.AsUniqueViolation(err)
	if !ok || uv.Field != repository.FieldPhone {
		t.Fatalf("expected phone violation, got %v", err)
	}

	found, err := s.Accounts().GetByPhone(context.Background(), "221771111111")
	if err != nil || found.Username != "a@senelec.sn" {
		t.Fatalf("GetByPhone = %+v, %v", found, err)
	}
	exists, err := s.Accounts().ExistsByEmail(context.Background(), "nobody@senelec.sn")
	if err != nil || exists {
		t.Fatalf("ExistsByEmail = %v, %v", exists, err)
	}
}

func TestDeleteCategoryCascadesTickets(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	billing := mustCategory(t, s, "Facturation")
	other := mustCategory(t, s, "Compteur")

	doomed := mustTicket(t, s, client.ID, billing.ID)
	kept := mustTicket(t, s, client.ID, other.ID)

	if err := s.Categories().Delete(ctx, billing.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := s.Tickets().GetByID(ctx, doomed.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("ticket should be gone, got %v", err)
	}
	if _, err := s.Tickets().GetByID(ctx, kept.ID); err != nil {
		t.Fatalf("other ticket should remain: %v", err)
	}
	if err := s.Categories().Delete(ctx, billing.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteTechnicianDetachesTickets(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	tech := mustAccount(t, s, "tech@test.sn", "221770000002", domain.RoleTechnician)
	cat := mustCategory(t, s, "Panne Électrique")
	ticket := mustTicket(t, s, client.ID, cat.ID)

	if _, err := s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{
		Technician: &repository.TechnicianChange{ID: &tech.ID},
	}, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := s.Accounts().Delete(ctx, tech.ID); err != nil {
		t.Fatalf("delete technician: %v", err)
	}
	got, err := s.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("ticket should survive: %v", err)
	}
	if got.TechnicianID != nil {
		t.Fatalf("TechnicianID = %v, want nil", *got.TechnicianID)
	}

	if err := s.Accounts().Delete(ctx, client.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	if _, err := s.Tickets().GetByID(ctx, ticket.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("client tickets should cascade, got %v", err)
	}
	history, _ := s.History().ListByTicket(ctx, ticket.ID)
	if len(history) != 0 {
		t.Fatalf("history should cascade, got %d entries", len(history))
	}
}

func TestTicketUpdateStampsResponseOnce(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	cat := mustCategory(t, s, "Compteur")
	ticket := mustTicket(t, s, client.ID, cat.ID)

	if ticket.Status != domain.TicketStatusPending || ticket.ResponseAt != nil {
		t.Fatalf("new ticket = %+v", ticket)
	}

	resolved := domain.TicketStatusResolved
	clock.Advance(time.Hour)
	stampedAt := clock.Now()
	res, err := s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{Status: &resolved}, &client.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := res.Ticket; got.ResponseAt == nil || !got.ResponseAt.Equal(stampedAt) {
		t.Fatalf("ResponseAt = %v, want %v", got.ResponseAt, stampedAt)
	}
	if !res.StatusChanged() || res.Previous.Status != domain.TicketStatusPending || len(res.Changes) != 1 {
		t.Fatalf("result = %+v", res)
	}

	closed := domain.TicketStatusClosed
	clock.Advance(time.Hour)
	res, err = s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{Status: &closed}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Ticket.ResponseAt.Equal(stampedAt) {
		t.Fatalf("ResponseAt moved to %v", res.Ticket.ResponseAt)
	}

	res, err = s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{Status: &closed}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.StatusChanged() || len(res.Changes) != 0 {
		t.Fatalf("repeated status should be a no-op, got %+v", res)
	}

	history, err := s.History().ListByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
}

func TestTicketAssignRequiresTechnician(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	cat := mustCategory(t, s, "Compteur")
	ticket := mustTicket(t, s, client.ID, cat.ID)

	_, err := s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{
		Technician: &repository.TechnicianChange{ID: &client.ID},
	}, nil)
	if !errors.Is(err, repository.ErrInvalidTechnician) {
		t.Fatalf("err = %v, want ErrInvalidTechnician", err)
	}
}

func TestTicketCountAndList(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	other := mustAccount(t, s, "other@test.sn", "221770000002", domain.RoleClient)
	cat := mustCategory(t, s, "Compteur")

	var ids []string
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		ids = append(ids, mustTicket(t, s, client.ID, cat.ID).ID)
	}
	mustTicket(t, s, other.ID, cat.ID)

	inProgress := domain.TicketStatusInProgress
	if _, err := s.Tickets().Update(ctx, ids[0], repository.TicketUpdate{Status: &inProgress}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	counts, err := s.Tickets().CountByStatus(ctx, repository.TicketFilter{AccountID: &client.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts.Total() != 3 || counts.Of(domain.TicketStatusPending) != 2 || counts.Of(domain.TicketStatusInProgress) != 1 {
		t.Fatalf("counts = %v", counts)
	}

	page, err := s.Tickets().List(ctx, repository.TicketFilter{AccountID: &client.ID, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Fatalf("unexpected page order")
	}
}

func TestRoleChangeBlockedWhileTechnicianAssigned(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	client := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	tech := mustAccount(t, s, "tech@test.sn", "221770000002", domain.RoleTechnician)
	cat := mustCategory(t, s, "Panne Électrique")
	ticket := mustTicket(t, s, client.ID, cat.ID)

	if _, err := s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{
		Technician: &repository.TechnicianChange{ID: &tech.ID},
	}, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	demoted := *tech
	demoted.Role = domain.RoleClient
	if err := s.Accounts().Update(ctx, &demoted); !errors.Is(err, repository.ErrTechnicianAssigned) {
		t.Fatalf("err = %v, want ErrTechnicianAssigned", err)
	}
	stored, _ := s.Accounts().GetByID(ctx, tech.ID)
	if stored.Role != domain.RoleTechnician {
		t.Fatalf("role = %s, want technician", stored.Role)
	}

	renamed := *tech
	renamed.Address = "Pikine"
	if err := s.Accounts().Update(ctx, &renamed); err != nil {
		t.Fatalf("profile edit of assigned technician: %v", err)
	}

	if _, err := s.Tickets().Update(ctx, ticket.ID, repository.TicketUpdate{
		Technician: &repository.TechnicianChange{},
	}, nil); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	demoted = *stored
	demoted.Role = domain.RoleClient
	if err := s.Accounts().Update(ctx, &demoted); err != nil {
		t.Fatalf("role change after unassign: %v", err)
	}
}

func TestAccountUpdateKeepsCredentials(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()
	acc := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)
	stale := *acc

	if err := s.Accounts().SetPassword(ctx, acc.ID, "new-hash"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	loginAt := clock.Now()
	if err := s.Accounts().TouchLastLogin(ctx, acc.ID, loginAt); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}

	stale.Address = "Dakar Plateau"
	stale.IsActive = false
	if err := s.Accounts().Update(ctx, &stale); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Accounts().GetByID(ctx, acc.ID)
	if got.PasswordHash != "new-hash" || got.LastLoginAt == nil || !got.LastLoginAt.Equal(loginAt) {
		t.Fatalf("credentials reverted: %+v", got)
	}
	if got.Address != "Dakar Plateau" || got.IsActive {
		t.Fatalf("profile not written: %+v", got)
	}
	if stale.PasswordHash != "new-hash" {
		t.Fatal("Update should reload the stored row into its argument")
	}

	if err := s.Accounts().TouchLastLogin(ctx, "missing", loginAt); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("TouchLastLogin(missing) = %v", err)
	}
}

func TestIssueTempPasswordOnlyWhenNonePending(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	acc := mustAccount(t, s, "client@test.sn", "221770000001", domain.RoleClient)

	issued, err := s.Accounts().IssueTempPassword(ctx, acc.ID, "Abc123xyz9", "hash-1")
	if err != nil || !issued {
		t.Fatalf("first issue = %v, %v", issued, err)
	}
	issued, err = s.Accounts().IssueTempPassword(ctx, acc.ID, "Zzz999yyy8", "hash-2")
	if err != nil || issued {
		t.Fatalf("second issue = %v, %v; want false", issued, err)
	}
	got, _ := s.Accounts().GetByID(ctx, acc.ID)
	if got.TempPassword != "Abc123xyz9" || got.PasswordHash != "hash-1" || !got.IsFirstLogin {
		t.Fatalf("pending password overwritten: %+v", got)
	}

	if _, err := s.Accounts().IssueTempPassword(ctx, "missing", "x", "y"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing account: %v", err)
	}
}
