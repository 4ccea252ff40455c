package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

type accountStore struct {
	s *Store
}

func cloneAccount(row *accountRow) *domain.Account {
	account := row.Account
	account.LastLoginAt = copyPtr(row.LastLoginAt)
	return &account
}

// uniqueAccountLocked reports the first unique field of account already used by another row.
func (s *Store) uniqueAccountLocked(account *domain.Account) error {
	for id, row := range s.accounts {
		if id == account.ID {
			continue
		}
		switch {
		case row.Email == account.Email:
			return &repository.UniqueViolation{Field: repository.FieldEmail}
		case row.Phone == account.Phone:
			return &repository.UniqueViolation{Field: repository.FieldPhone}
		case row.Username == account.Username:
			return &repository.UniqueViolation{Field: repository.FieldUsername}
		}
	}
	return nil
}

func (r *accountStore) Create(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if account.Username == "" {
		account.Username = account.Email
	}
	account.ID = ""
	if err := r.s.uniqueAccountLocked(account); err != nil {
		return err
	}

	now := r.s.now()
	account.ID = newID()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = &accountRow{Account: *cloneAccount(&accountRow{Account: *account}), seq: r.s.nextSeq()}
	return nil
}

func (r *accountStore) Update(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.accounts[account.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.s.uniqueAccountLocked(account); err != nil {
		return err
	}
	if account.Role != domain.RoleTechnician && r.s.hasAssignmentsLocked(account.ID) {
		return repository.ErrTechnicianAssigned
	}

	row.Username = account.Username
	row.Email = account.Email
	row.Phone = account.Phone
	row.LastName = account.LastName
	row.FirstName = account.FirstName
	row.Address = account.Address
	row.MeterNumber = account.MeterNumber
	row.Role = account.Role
	row.IsActive = account.IsActive
	row.UpdatedAt = r.s.now()
	*account = *cloneAccount(row)
	return nil
}

func (s *Store) hasAssignmentsLocked(accountID string) bool {
	for _, t := range s.tickets {
		if t.TechnicianID != nil && *t.TechnicianID == accountID {
			return true
		}
	}
	return false
}

func (r *accountStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.LastLoginAt = &at
	return nil
}

func (r *accountStore) SetPassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.CompleteOnboarding(hash)
	row.UpdatedAt = r.s.now()
	return nil
}

func (r *accountStore) IssueTempPassword(_ context.Context, id, plain, hash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if row.TempPassword != "" {
		return false, nil
	}
	row.IssueTempPassword(plain, hash)
	row.UpdatedAt = r.s.now()
	return true, nil
}

func (r *accountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAccount(row), nil
}

func (r *accountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Email == email })
}

func (r *accountStore) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Phone == phone })
}

func (r *accountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(r.GetByEmail(ctx, email))
}

func (r *accountStore) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(r.GetByPhone(ctx, phone))
}

func (r *accountStore) exists(_ *domain.Account, err error) (bool, error) {
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *accountStore) find(match func(*domain.Account) bool) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.accounts {
		if match(&row.Account) {
			return cloneAccount(row), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountStore) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*accountRow, 0, len(r.s.accounts))
	for _, row := range r.s.accounts {
		if filter.Role != nil && row.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && row.IsActive != *filter.Active {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	start, end := paginate(len(rows), filter.Limit, filter.Offset, 50)
	result := make([]domain.Account, 0, end-start)
	for _, row := range rows[start:end] {
		result = append(result, *cloneAccount(row))
	}
	return result, nil
}

func (r *accountStore) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[domain.Role]int64, len(domain.Roles))
	for _, row := range r.s.accounts {
		counts[row.Role]++
	}
	return counts, nil
}

func (r *accountStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return repository.ErrNotFound
	}

	now := r.s.now()
	for _, row := range r.s.tickets {
		if row.TechnicianID != nil && *row.TechnicianID == id {
			row.TechnicianID = nil
			row.UpdatedAt = now
		}
	}
	r.s.deleteTicketsLocked(func(row *ticketRow) bool { return row.AccountID == id })
	for i := range r.s.history {
		if by := r.s.history[i].ChangedByID; by != nil && *by == id {
			r.s.history[i].ChangedByID = nil
		}
	}
	delete(r.s.accounts, id)
	return nil
}

func (r *accountStore) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := int64(len(r.s.accounts))
	r.s.deleteTicketsLocked(func(*ticketRow) bool { return true })
	r.s.accounts = make(map[string]*accountRow)
	return deleted, nil
}
