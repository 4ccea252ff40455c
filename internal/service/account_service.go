package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// MsgCannotDeleteSelf is returned when an admin deletes their own account.
const MsgCannotDeleteSelf = "Vous ne pouvez pas supprimer votre propre compte"

// AccountService manages accounts on behalf of administrators.
type AccountService struct {
	accounts      repository.AccountRepository
	notifications *NotificationService
	events        publisher
	bcryptCost    int
}

// AccountDependencies bundles collaborators of the account service.
type AccountDependencies struct {
	Accounts      repository.AccountRepository
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	BcryptCost    int
	Clock         func() time.Time
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	return &AccountService{
		accounts:      deps.Accounts,
		notifications: deps.Notifications,
		events:        publisher{dispatcher: deps.Dispatcher, now: deps.Clock},
		bcryptCost:    deps.BcryptCost,
	}
}

// AddUserInput carries the add-user payload.
type AddUserInput struct {
	Nom            string
	Prenom         string
	Email          string
	Telephone      string
	Role           string
	Adresse        string
	NumeroCompteur string
}

// AddUserResult is returned after an account is created.
type AddUserResult struct {
	Account      *domain.Account
	TempPassword string
	EmailSent    bool
}

// AddUser creates an account with a temporary password and emails it.
func (s *AccountService) AddUser(ctx context.Context, p *domain.Principal, in AddUserInput) (*AddUserResult, error) {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return nil, err
	}

	in.Nom = strings.TrimSpace(in.Nom)
	in.Prenom = strings.TrimSpace(in.Prenom)
	in.Email = strings.TrimSpace(in.Email)
	in.Telephone = strings.TrimSpace(in.Telephone)
	in.Role = strings.TrimSpace(in.Role)

	if missing := missingFields(
		field{"nom", in.Nom},
		field{"prenom", in.Prenom},
		field{"email", in.Email},
		field{"telephone", in.Telephone},
		field{"role", in.Role},
	); len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"Champs manquants: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("Rôle invalide: "+in.Role, nil)
	}

	// Pre-checks give the precise message; the unique constraints settle races.
	if exists, err := s.accounts.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, apperrors.NewInternalError(err)
	} else if exists {
		return nil, apperrors.NewConflict(MsgEmailExists, map[string]any{"field": repository.FieldEmail})
	}
	if exists, err := s.accounts.ExistsByPhone(ctx, in.Telephone); err != nil {
		return nil, apperrors.NewInternalError(err)
	} else if exists {
		return nil, apperrors.NewConflict(MsgPhoneExists, map[string]any{"field": repository.FieldPhone})
	}

	account := &domain.Account{
		Username:    in.Email,
		Email:       in.Email,
		Phone:       in.Telephone,
		LastName:    in.Nom,
		FirstName:   in.Prenom,
		Address:     strings.TrimSpace(in.Adresse),
		MeterNumber: strings.TrimSpace(in.NumeroCompteur),
		Role:        role,
		IsActive:    true,
	}
	tempPassword, err := issueTempPassword(account, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, mapStoreError(err, MsgUserNotFound)
	}

	sent := deliverCredentials(ctx, s.notifications, s.events, account, tempPassword)
	return &AddUserResult{Account: account, TempPassword: tempPassword, EmailSent: sent}, nil
}

// AccountListFilter narrows List.
type AccountListFilter struct {
	Role   string
	Active *bool
	Limit  int
	Offset int
}

// List returns accounts visible to back office roles.
func (s *AccountService) List(ctx context.Context, p *domain.Principal, filter AccountListFilter) ([]domain.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := auth.Authorize(p, auth.MsgAccessForbidden, domain.RoleAdmin, domain.RoleSupervisor); err != nil {
		return nil, err
	}

	repoFilter := repository.AccountFilter{Active: filter.Active, Limit: filter.Limit, Offset: filter.Offset}
	if filter.Role != "" {
		role, err := domain.ParseRole(filter.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("Rôle invalide: "+filter.Role, nil)
		}
		repoFilter.Role = &role
	}
	accounts, err := s.accounts.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return accounts, nil
}

// UpdateAccountInput lists editable account fields; nil fields are unchanged.
type UpdateAccountInput struct {
	Nom            *string
	Prenom         *string
	Email          *string
	Telephone      *string
	Adresse        *string
	NumeroCompteur *string
	Role           *string
	IsActive       *bool
}

// Update edits an account's profile, role or activation flag.
func (s *AccountService) Update(ctx context.Context, p *domain.Principal, id string, in UpdateAccountInput) (*domain.Account, error) {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, MsgUserNotFound)
	}

	required := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"nom", in.Nom, &account.LastName},
		{"prenom", in.Prenom, &account.FirstName},
		{"email", in.Email, &account.Email},
		{"telephone", in.Telephone, &account.Phone},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Le champ %s ne peut pas être vide", f.name), nil)
		}
		*f.dst = v
	}
	if in.Email != nil {
		account.Username = account.Email
	}
	if in.Adresse != nil {
		account.Address = strings.TrimSpace(*in.Adresse)
	}
	if in.NumeroCompteur != nil {
		account.MeterNumber = strings.TrimSpace(*in.NumeroCompteur)
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("Rôle invalide: "+*in.Role, nil)
		}
		account.Role = role
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, mapStoreError(err, MsgUserNotFound)
	}
	return account, nil
}

// Delete removes an account. Its complaints are deleted and complaints
// assigned to it are detached.
func (s *AccountService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := auth.Authorize(p, auth.MsgAdminRequired, domain.RoleAdmin); err != nil {
		return err
	}
	if p.Account.ID == id {
		return apperrors.NewValidationError(MsgCannotDeleteSelf, nil)
	}
	return mapStoreError(s.accounts.Delete(ctx, id), MsgUserNotFound)
}

type field struct {
	name  string
	value string
}

func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
