package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

const principalKey = "auth_principal"

// MsgNotLoggedIn is returned to anonymous callers of protected routes.
const MsgNotLoggedIn = "Utilisateur non connecté"

// AccountLoader is the slice of the account repository the middleware needs.
type AccountLoader interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// AuthMiddleware resolves the session cookie or bearer token into a principal.
type AuthMiddleware struct {
	sessions   *SessionManager
	accounts   AccountLoader
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionManager, accounts AccountLoader, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{sessions: sessions, accounts: accounts, cookieName: cookieName, logger: logger}
}

// Handle loads the principal when credentials are present. Anonymous
// requests pass through; routes decide whether they need a principal.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := m.extractToken(c)
	if token == "" {
		return c.Next()
	}

	session, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Warn("session lookup failed", zap.Error(err))
		}
		return c.Next()
	}

	account, err := m.accounts.GetByID(c.UserContext(), session.AccountID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewInternalError(err)
		}
		return c.Next()
	}
	if !account.IsActive {
		return c.Next()
	}

	c.Locals(principalKey, &domain.Principal{Account: account, SessionID: session.ID})
	return c.Next()
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(m.cookieName)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized(MsgNotLoggedIn)
		}
		return c.Next()
	}
}
