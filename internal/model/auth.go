package model

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the login response. UserID is only sent by some deployments.
type LoginResult struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	UserID string `json:"userId,omitempty"`
}
