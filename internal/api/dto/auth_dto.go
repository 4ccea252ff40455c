package dto

// LoginRequest payload for POST /api/login/.
type LoginRequest struct {
	EmailOrPhone string `json:"email_or_phone"`
	Password     string `json:"password"`
}

// SendCredentialsRequest payload for POST /api/send-credentials/.
type SendCredentialsRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest payload for POST /api/change-password/.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	User         UserSummary `json:"user"`
	DashboardURL string      `json:"dashboard_url"`
	Token        string      `json:"token,omitempty"`
}

// MessageResponse is the bare success envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendCredentialsResponse reports whether the email went out.
type SendCredentialsResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
