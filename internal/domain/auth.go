package domain

import "time"

// Session binds an authenticated client to an account.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller resolved once per request.
type Principal struct {
	Account   *Account
	SessionID string
}

// Role returns the caller's role, empty for a nil principal.
func (p *Principal) Role() Role {
	if p == nil || p.Account == nil {
		return ""
	}
	return p.Account.Role
}

// HasRole reports whether the principal holds one of roles.
func (p *Principal) HasRole(roles ...Role) bool {
	current := p.Role()
	if current == "" {
		return false
	}
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}
