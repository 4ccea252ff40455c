package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// Login and credential messages.
const (
	MsgLoginFieldsRequired  = "Email/téléphone et mot de passe requis"
	MsgInvalidCredentials   = "Email/téléphone ou mot de passe incorrect"
	MsgEmailRequired        = "Email requis"
	MsgPasswordFields       = "Mot de passe actuel et nouveau mot de passe requis"
	MsgPasswordTooShort     = "Le nouveau mot de passe doit contenir au moins 8 caractères"
	MsgWrongCurrentPassword = "Mot de passe actuel incorrect"

	minPasswordLength = 8
	maxIssueAttempts  = 3
)

// Redirect targets returned after login.
const (
	AdminDashboardURL = "/admin/"
	UserDashboardURL  = "/dashboard/"
)

// AuthService coordinates login, logout and credential flows.
type AuthService struct {
	accounts      repository.AccountRepository
	sessions      *auth.SessionManager
	notifications *NotificationService
	events        publisher
	logger        *zap.Logger
	bcryptCost    int
	now           func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Accounts      repository.AccountRepository
	Sessions      *auth.SessionManager
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	BcryptCost    int
	Clock         func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:      deps.Accounts,
		sessions:      deps.Sessions,
		notifications: deps.Notifications,
		events:        publisher{dispatcher: deps.Dispatcher, now: now},
		logger:        logger,
		bcryptCost:    deps.BcryptCost,
		now:           now,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account      *domain.Account
	Session      *domain.Session
	Token        string
	Message      string
	DashboardURL string
}

// Login resolves identifier (email when it contains "@", phone otherwise),
// checks the password and opens a session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError(MsgLoginFieldsRequired, nil)
	}

	var (
		account *domain.Account
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.accounts.GetByEmail(ctx, identifier)
	} else {
		account, err = s.accounts.GetByPhone(ctx, identifier)
	}
	if err != nil {
		return nil, mapStoreError(err, MsgUserNotFound)
	}

	if !account.IsActive || auth.ComparePassword(account.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	token, session, err := s.sessions.Issue(ctx, account)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	loginAt := s.now()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, loginAt); err != nil {
		s.logger.Warn("stamp last login", zap.String("account_id", account.ID), zap.Error(err))
	} else {
		account.LastLoginAt = &loginAt
	}

	message, url := loginRedirect(account)
	return &LoginResult{
		Account:      account,
		Session:      session,
		Token:        token,
		Message:      message,
		DashboardURL: url,
	}, nil
}

func loginRedirect(account *domain.Account) (string, string) {
	switch account.Role {
	case domain.RoleAdmin, domain.RoleSupervisor:
		return "Redirection vers le dashboard administrateur...", AdminDashboardURL
	case domain.RoleClient, domain.RoleTechnician:
		return "Bienvenue " + account.FullName() + "! Connexion réussie.", UserDashboardURL
	}
	return "Bienvenue " + account.FullName() + "! Connexion réussie.", UserDashboardURL
}

// Logout revokes the caller's session. It never fails.
func (s *AuthService) Logout(ctx context.Context, p *domain.Principal) {
	if p == nil {
		return
	}
	if err := s.sessions.Revoke(ctx, p.SessionID); err != nil {
		s.logger.Warn("revoke session", zap.String("session_id", p.SessionID), zap.Error(err))
	}
}

// SendCredentials resends the pending temp password of the account owning
// email, issuing a fresh one when none is pending.
func (s *AuthService) SendCredentials(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperrors.NewValidationError(MsgEmailRequired, nil)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return false, mapStoreError(err, MsgUserNotFound)
	}

	tempPassword, err := s.pendingTempPassword(ctx, account)
	if err != nil {
		return false, err
	}
	return deliverCredentials(ctx, s.notifications, s.events, account, tempPassword), nil
}

// pendingTempPassword returns the temp password awaiting delivery, issuing
// one when none is pending. A concurrent issuer wins; its password is reused.
func (s *AuthService) pendingTempPassword(ctx context.Context, account *domain.Account) (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		if account.TempPassword != "" {
			return account.TempPassword, nil
		}
		plain, hash, err := newTempPassword(s.bcryptCost)
		if err != nil {
			return "", apperrors.NewInternalError(err)
		}
		issued, err := s.accounts.IssueTempPassword(ctx, account.ID, plain, hash)
		if err != nil {
			return "", mapStoreError(err, MsgUserNotFound)
		}
		if issued {
			account.IssueTempPassword(plain, hash)
			return plain, nil
		}
		if account, err = s.accounts.GetByID(ctx, account.ID); err != nil {
			return "", mapStoreError(err, MsgUserNotFound)
		}
	}
	return "", apperrors.NewInternalError(errors.New("temp password kept changing while being issued"))
}

// ChangePassword replaces the caller's password and completes onboarding.
func (s *AuthService) ChangePassword(ctx context.Context, p *domain.Principal, current, next string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if current == "" || next == "" {
		return apperrors.NewValidationError(MsgPasswordFields, nil)
	}
	if len(next) < minPasswordLength {
		return apperrors.NewValidationError(MsgPasswordTooShort, nil)
	}

	account, err := s.accounts.GetByID(ctx, p.Account.ID)
	if err != nil {
		return mapStoreError(err, MsgUserNotFound)
	}
	if err := auth.ComparePassword(account.PasswordHash, current); err != nil {
		return apperrors.NewValidationError(MsgWrongCurrentPassword, nil)
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.accounts.SetPassword(ctx, account.ID, hash); err != nil {
		return mapStoreError(err, MsgUserNotFound)
	}
	return nil
}

func newTempPassword(cost int) (string, string, error) {
	plain, err := auth.GenerateTempPassword(auth.TempPasswordLength)
	if err != nil {
		return "", "", err
	}
	hash, err := auth.HashPassword(plain, cost)
	if err != nil {
		return "", "", err
	}
	return plain, hash, nil
}

func issueTempPassword(account *domain.Account, cost int) (string, error) {
	plain, hash, err := newTempPassword(cost)
	if err != nil {
		return "", err
	}
	account.IssueTempPassword(plain, hash)
	return plain, nil
}

func deliverCredentials(ctx context.Context, notifications *NotificationService, pub publisher, account *domain.Account, tempPassword string) bool {
	sent := false
	if notifications != nil {
		sent = notifications.SendCredentials(ctx, account, tempPassword)
	}
	pub.publish(ctx, events.Event{
		Type:      events.EventCredentialsIssued,
		AccountID: account.ID,
		Payload:   events.CredentialsIssuedPayload{Email: account.Email, EmailSent: sent},
	})
	return sent
}

