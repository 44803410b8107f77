package auth

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// CredentialsRequest payload for signup and login.
// swagger:model CredentialsRequest
type CredentialsRequest struct {
	Username string `json:"username" example:"asha"`
	Password string `json:"password" example:"s3cret"`
}

// TokenResponse carries the signed access token.
// swagger:model TokenResponse
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
