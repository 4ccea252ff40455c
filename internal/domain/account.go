package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "superviseur"
	RoleClient     Role = "client"
	RoleTechnician Role = "technicien"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleClient, RoleTechnician}

// ParseRole accepts the wire value or its English alias.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrateur":
		return RoleAdmin, nil
	case "superviseur", "supervisor":
		return RoleSupervisor, nil
	case "client":
		return RoleClient, nil
	case "technicien", "technician":
		return RoleTechnician, nil
	default:
		return "", fmt.Errorf("rôle invalide: %q", raw)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleClient, RoleTechnician:
		return true
	}
	return false
}

// Label is the human readable name used in emails.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrateur"
	case RoleSupervisor:
		return "Superviseur"
	case RoleClient:
		return "Client"
	case RoleTechnician:
		return "Technicien"
	}
	return string(r)
}

// IsBackOffice reports whether the role lands on the administrative surface.
func (r Role) IsBackOffice() bool {
	switch r {
	case RoleAdmin, RoleSupervisor:
		return true
	case RoleClient, RoleTechnician:
		return false
	}
	return false
}

// Account is a system user.
type Account struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	LastName     string
	FirstName    string
	Address      string
	MeterNumber  string
	Role         Role
	PasswordHash string
	IsFirstLogin bool
	TempPassword string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "prenom nom".
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IssueTempPassword stamps freshly generated credentials on the account.
func (a *Account) IssueTempPassword(plain, hash string) {
	a.TempPassword = plain
	a.PasswordHash = hash
	a.IsFirstLogin = true
}

// CompleteOnboarding replaces the temp credentials with a user chosen hash.
func (a *Account) CompleteOnboarding(hash string) {
	a.PasswordHash = hash
	a.TempPassword = ""
	a.IsFirstLogin = false
}
