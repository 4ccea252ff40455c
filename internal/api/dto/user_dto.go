package dto

import (
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
)

// UserSummary is the short account view used by login and dashboard.
type UserSummary struct {
	ID           string      `json:"id,omitempty"`
	Nom          string      `json:"nom"`
	Prenom       string      `json:"prenom"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	IsFirstLogin *bool       `json:"is_first_login,omitempty"`
}

// AddUserRequest payload for POST /api/add-user/.
type AddUserRequest struct {
	Nom            string `json:"nom"`
	Prenom         string `json:"prenom"`
	Email          string `json:"email"`
	Telephone      string `json:"telephone"`
	Role           string `json:"role"`
	Adresse        string `json:"adresse"`
	NumeroCompteur string `json:"numero_compteur"`
}

// CreatedUser is the account view returned once, with its temp password.
type CreatedUser struct {
	ID           string      `json:"id"`
	Nom          string      `json:"nom"`
	Prenom       string      `json:"prenom"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	TempPassword string      `json:"temp_password"`
	IsFirstLogin bool        `json:"is_first_login"`
}

// AddUserResponse is returned by POST /api/add-user/.
type AddUserResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	User      CreatedUser `json:"user"`
	EmailSent bool        `json:"email_sent"`
}

// UpdateUserRequest payload for PATCH /api/users/:id/. Absent fields are unchanged.
type UpdateUserRequest struct {
	Nom            *string `json:"nom"`
	Prenom         *string `json:"prenom"`
	Email          *string `json:"email"`
	Telephone      *string `json:"telephone"`
	Adresse        *string `json:"adresse"`
	NumeroCompteur *string `json:"numero_compteur"`
	Role           *string `json:"role"`
	IsActive       *bool   `json:"is_active"`
}

// AccountResponse is the administrative account view. It never carries
// credentials.
type AccountResponse struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Nom            string      `json:"nom"`
	Prenom         string      `json:"prenom"`
	Email          string      `json:"email"`
	Telephone      string      `json:"telephone"`
	Adresse        string      `json:"adresse"`
	NumeroCompteur string      `json:"numero_compteur"`
	Role           domain.Role `json:"role"`
	IsActive       bool        `json:"is_active"`
	IsFirstLogin   bool        `json:"is_first_login"`
	LastLogin      *time.Time  `json:"last_login"`
	DateCreated    time.Time   `json:"date_created"`
	DateUpdated    time.Time   `json:"date_updated"`
}

// NewUserSummary builds the short view of account.
func NewUserSummary(account *domain.Account, withID bool) UserSummary {
	summary := UserSummary{
		Nom:    account.LastName,
		Prenom: account.FirstName,
		Email:  account.Email,
		Role:   account.Role,
	}
	if withID {
		first := account.IsFirstLogin
		summary.ID = account.ID
		summary.IsFirstLogin = &first
	}
	return summary
}

// NewAccountResponse builds the administrative view of account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:             account.ID,
		Username:       account.Username,
		Nom:            account.LastName,
		Prenom:         account.FirstName,
		Email:          account.Email,
		Telephone:      account.Phone,
		Adresse:        account.Address,
		NumeroCompteur: account.MeterNumber,
		Role:           account.Role,
		IsActive:       account.IsActive,
		IsFirstLogin:   account.IsFirstLogin,
		LastLogin:      account.LastLoginAt,
		DateCreated:    account.CreatedAt,
		DateUpdated:    account.UpdatedAt,
	}
}
