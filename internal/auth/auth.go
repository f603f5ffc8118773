// Package auth implements registration, login and logout. It is the only
// writer of the session identity.
package auth

import (
	"context"
	"strings"

	"printshop/internal/apperr"
	"printshop/internal/logging"
	"printshop/internal/model"
	"printshop/internal/session"
)

// Route is a navigation destination returned by a completed flow.
type Route string

const (
	RouteHome           Route = "/"
	RouteUserLogin      Route = "/user/login"
	RouteUserRegister   Route = "/user/register"
	RouteUserDashboard  Route = "/user/dashboard"
	RouteAdminLogin     Route = "/admin/login"
	RouteAdminDashboard Route = "/admin/dashboard"
	RouteMarketplace    Route = "/marketplace"
	RouteMyListings     Route = "/marketplace/my-listings"
)

// DashboardFor returns where a freshly logged in actor lands.
func DashboardFor(role session.Role) Route {
	if role == session.RoleAdmin {
		return RouteAdminDashboard
	}
	return RouteUserDashboard
}

// Service is the remote surface used by the flows. *api.Client satisfies it.
type Service interface {
	Register(ctx context.Context, reg model.Registration) error
	LoginUser(ctx context.Context, creds model.Credentials) (model.LoginResult, error)
	LoginAdmin(ctx context.Context, creds model.Credentials) (model.LoginResult, error)
}

// SessionWriter establishes and clears the identity. *session.Session
// satisfies it.
type SessionWriter interface {
	Establish(ctx context.Context, id session.Identity) error
	Clear(ctx context.Context) error
}

// Error is a failed flow. Its user message is the server's message when one
// was sent, else the flow's fixed fallback text.
type Error struct {
	Op       string
	Fallback string
	Err      error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Kind reports the classification of the underlying failure.
func (e *Error) Kind() apperr.Kind { return apperr.KindOf(e.Err) }

// UserMessage implements apperr's message hook.
func (e *Error) UserMessage() string { return apperr.UserMessage(e.Err, e.Fallback) }

// Flows bundles the auth operations.
type Flows struct {
	svc  Service
	sess SessionWriter
}

// New creates the auth flows.
func New(svc Service, sess SessionWriter) *Flows {
	return &Flows{svc: svc, sess: sess}
}

// Register creates an account. It does not log in; the caller is sent to the
// user login page.
func (f *Flows) Register(ctx context.Context, reg model.Registration) (Route, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	switch {
	case reg.Name == "":
		return "", apperr.Validation("name", "Name is required")
	case reg.Email == "":
		return "", apperr.Validation("email", "Email is required")
	case reg.Password == "":
		return "", apperr.Validation("password", "Password is required")
	}

	if err := f.svc.Register(ctx, reg); err != nil {
		logging.Get(logging.CategoryAuth).Warn("Registration for %s failed: %v", reg.Email, err)
		return "", &Error{Op: "register", Fallback: "Error occurred", Err: err}
	}
	logging.Auth("Registered %s", reg.Email)
	return RouteUserLogin, nil
}

// Login authenticates as role and establishes the session.
func (f *Flows) Login(ctx context.Context, role session.Role, creds model.Credentials) (Route, error) {
	if !role.Valid() {
		return "", apperr.Validation("role", "Unknown role")
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" {
		return "", apperr.Validation("email", "Email is required")
	}
	if creds.Password == "" {
		return "", apperr.Validation("password", "Password is required")
	}

	fallback := "Invalid credentials"
	login := f.svc.LoginUser
	if role == session.RoleAdmin {
		fallback = "Invalid admin credentials"
		login = f.svc.LoginAdmin
	}

	res, err := login(ctx, creds)
	if err == nil && res.Token == "" {
		err = errMissingToken
	}
	if err != nil {
		logging.Get(logging.CategoryAuth).Warn("%s login for %s failed: %v", role, creds.Email, err)
		return "", &Error{Op: string(role) + " login", Fallback: fallback, Err: err}
	}

	id := session.Identity{Token: res.Token, Name: res.Name, Role: role, UserID: res.UserID}
	if err := f.sess.Establish(ctx, id); err != nil {
		return "", &Error{Op: string(role) + " login", Fallback: "Could not save session", Err: err}
	}
	logging.Auth("%s logged in as %s", res.Name, role)
	return DashboardFor(role), nil
}

// Logout clears the session and returns to the landing page.
func (f *Flows) Logout(ctx context.Context) (Route, error) {
	if err := f.sess.Clear(ctx); err != nil {
		return "", &Error{Op: "logout", Fallback: "Could not clear session", Err: err}
	}
	logging.Auth("Logged out")
	return RouteHome, nil
}

var errMissingToken error = &remoteError{msg: "login response has no token"}

type remoteError struct{ msg string }

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Kind() apperr.Kind { return apperr.KindRemote }
