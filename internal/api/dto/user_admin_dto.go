package dto

// UserUpdateRequest payload for admin account edits.
type UserUpdateRequest struct {
	Name   string `json:"name" validate:"required,min=3,max=100"`
	Role   string `json:"role" validate:"required,oneof=admin tecnico atendente"`
	Active bool   `json:"active"`
}

// PasswordResetRequest payload for an admin-driven password reset.
type PasswordResetRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}
