package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

func newTestSessions(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(NewRedisSessionStore(client), NewTokenManager("test-secret"), time.Hour, nil), mr
}

type stubAccounts map[string]*domain.Account

func (s stubAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	acc, ok := s[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return acc, nil
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, "Secret123"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		pw, err := GenerateTempPassword(TempPasswordLength)
		if err != nil {
			t.Fatalf("GenerateTempPassword: %v", err)
		}
		if len(pw) != TempPasswordLength {
			t.Fatalf("len = %d", len(pw))
		}
		for _, r := range pw {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				t.Fatalf("unexpected rune %q in %q", r, pw)
			}
		}
		seen[pw] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("passwords should vary")
	}
}

func TestTokenRoundTripAndTamper(t *testing.T) {
	tm := NewTokenManager("secret")
	now := time.Now()
	session := &domain.Session{ID: "sid-1", AccountID: "acc-1", Role: domain.RoleClient, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	token, err := tm.GenerateToken(session)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SessionID != "sid-1" || claims.Subject != "acc-1" || claims.Role != domain.RoleClient {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := NewTokenManager("other").ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must fail")
	}

	session.ExpiresAt = now.Add(-time.Minute)
	expired, _ := tm.GenerateToken(session)
	if _, err := tm.ParseToken(expired); err == nil {
		t.Fatal("expired token must fail")
	}
}

func TestSessionLifecycle(t *testing.T) {
	sessions, mr := newTestSessions(t)
	ctx := context.Background()
	account := &domain.Account{ID: "acc-1", Role: domain.RoleTechnician}

	token, session, err := sessions.Issue(ctx, account)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !mr.Exists(sessionKey(session.ID)) {
		t.Fatal("session should be stored in redis")
	}
	if ttl := mr.TTL(sessionKey(session.ID)); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	resolved, err := sessions.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.AccountID != "acc-1" || resolved.Role != domain.RoleTechnician {
		t.Fatalf("unexpected session %+v", resolved)
	}

	if err := sessions.Revoke(ctx, session.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := sessions.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Resolve after revoke = %v", err)
	}
	if _, err := sessions.Resolve(ctx, "garbage"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Resolve garbage = %v", err)
	}
}

func TestSessionExpiresInRedis(t *testing.T) {
	sessions, mr := newTestSessions(t)
	ctx := context.Background()

	token, _, err := sessions.Issue(ctx, &domain.Account{ID: "acc-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := sessions.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Resolve after expiry = %v", err)
	}
}

func newMiddlewareApp(t *testing.T, accounts stubAccounts) (*fiber.App, *SessionManager) {
	t.Helper()
	sessions, _ := newTestSessions(t)
	mw := NewAuthMiddleware(sessions, accounts, "sessionid", nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Message)
		},
	})
	app.Use(mw.Handle)
	app.Get("/me", RequireAuthenticated(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Account.ID)
	})
	app.Get("/admin", RequireRole(MsgAdminRequired, domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, sessions
}

func TestAuthMiddleware(t *testing.T) {
	accounts := stubAccounts{
		"admin-1":  {ID: "admin-1", Role: domain.RoleAdmin, IsActive: true},
		"client-1": {ID: "client-1", Role: domain.RoleClient, IsActive: true},
		"gone-1":   {ID: "gone-1", Role: domain.RoleAdmin, IsActive: false},
	}
	app, sessions := newMiddlewareApp(t, accounts)

	issue := func(id string) string {
		token, _, err := sessions.Issue(context.Background(), accounts[id])
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return token
	}
	adminToken := issue("admin-1")
	clientToken := issue("client-1")
	inactiveToken := issue("gone-1")

	tests := []struct {
		name   string
		path   string
		cookie string
		bearer string
		want   int
	}{
		{name: "anonymous me", path: "/me", want: http.StatusUnauthorized},
		{name: "cookie me", path: "/me", cookie: clientToken, want: http.StatusOK},
		{name: "bearer me", path: "/me", bearer: clientToken, want: http.StatusOK},
		{name: "inactive account", path: "/me", cookie: inactiveToken, want: http.StatusUnauthorized},
		{name: "anonymous admin", path: "/admin", want: http.StatusForbidden},
		{name: "client admin", path: "/admin", cookie: clientToken, want: http.StatusForbidden},
		{name: "admin admin", path: "/admin", cookie: adminToken, want: http.StatusNoContent},
		{name: "bad token", path: "/me", bearer: "nope", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sessionid", Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
