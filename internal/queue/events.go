package queue

import "time"

const DefaultExchange = "auth.events"

// Routing keys on the auth exchange.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyPasswordReset  = "user.password_reset"
)

type UserRegistered struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

type UserLoggedIn struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

// PasswordResetRequested carries the plaintext reset token to the mailer.
type PasswordResetRequested struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	At        time.Time  `json:"at"`
}
