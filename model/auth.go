package model

// SignupRequest represents user registration data
type SignupRequest struct {
	Name     string `json:"name" example:"Asha"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"SecurePassword123"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"SecurePassword123"`
}

// LoginResponse represents successful login response
type LoginResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	Profile      Profile `json:"profile"`
}

// RefreshTokenRequest represents token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateNameRequest represents a profile name change
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdatePasswordRequest represents a password change. The current password is
// required for re-authentication.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
