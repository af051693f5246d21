package types

import "time"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=255" example:"a@x.com"`
	Password string `json:"password" validate:"required,max=1024" example:"secret123"`
	Role     string `json:"role,omitempty" example:"user"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"a@x.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// LoginResponse carries the issued access token and the caller's public profile.
type LoginResponse struct {
	Token string     `json:"token" example:"eyJhbGciOiJI..."`
	User  PublicUser `json:"user"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status    string `json:"status" example:"error"`
	Message   string `json:"message" example:"Invalid credentials"`
	RequestID string `json:"request_id,omitempty"`
}

// EchoRequest is the body of POST /test.
type EchoRequest struct {
	Message string `json:"message" validate:"required"`
	Data    any    `json:"data,omitempty"`
}

type EchoResponse struct {
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Data       any       `json:"data"`
	ReceivedAt time.Time `json:"received_at"`
}
