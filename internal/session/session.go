package session

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// Result is the outcome of a login or registration attempt.
//
// Error carries the server's detail message when one was reported, otherwise a
// generic fallback suitable for display.
type Result struct {
	OK    bool
	Error string
}

// Manager maintains the current user identity backed by a persisted bearer token.
type Manager struct {
	api    *api.Client
	store  TokenStore
	logger *log.Logger
	user   *models.User
}

// NewManager creates a session manager over the given API client and token store.
func NewManager(client *api.Client, store TokenStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Manager{
		api:    client,
		store:  store,
		logger: logger,
	}
}

// CurrentUser returns the authenticated identity, or nil when unauthenticated.
func (m *Manager) CurrentUser() *models.User {
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Authenticated reports whether a prior token validation succeeded.
func (m *Manager) Authenticated() bool {
	return m.user != nil
}

// Initialize resolves a previously persisted token to a user identity.
//
// Any failure clears the persisted token and leaves the session
// unauthenticated; it is never fatal to the caller.
func (m *Manager) Initialize(ctx context.Context) {
	if _, ok := m.store.Token(); !ok {
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Warnf("failed to resolve persisted token, clearing it: %v", err)
		m.discardToken()
		return
	}

	m.user = user
}

// Login exchanges credentials for a bearer token, persists it, and resolves
// the identity. Failures never escape as errors.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Warnf("login failed: %v", err)
		return failure(err, "Failed to login")
	}

	if err := m.store.Save(token); err != nil {
		m.logger.Errorf("failed to persist token: %v", err)
		return failure(err, "Failed to login")
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		// A token we cannot resolve must not linger.
		m.logger.Warnf("failed to resolve identity after login: %v", err)
		m.discardToken()
		return failure(err, "Failed to fetch user profile")
	}

	m.user = user
	return Result{OK: true}
}

// Register creates an account, then logs in with the supplied email and password.
func (m *Manager) Register(ctx context.Context, username, email, password string) Result {
	if _, err := m.api.Register(ctx, username, email, password); err != nil {
		m.logger.Warnf("registration failed: %v", err)
		return failure(err, "Failed to register")
	}

	return m.Login(ctx, email, password)
}

// Logout clears the persisted token and the in-memory identity. No network call.
func (m *Manager) Logout() {
	m.discardToken()
}

// UserPatch contains profile fields to merge into the current identity.
// Empty fields are left unchanged.
type UserPatch struct {
	Username string
	Email    string
	Avatar   string
	Bio      string
}

// UpdateUserInfo merges the given fields into the in-memory identity only.
// Intended for optimistic local reflection of a profile edit performed elsewhere.
func (m *Manager) UpdateUserInfo(patch UserPatch) {
	if m.user == nil {
		return
	}

	if patch.Username != "" {
		m.user.Username = patch.Username
	}
	if patch.Email != "" {
		m.user.Email = patch.Email
	}
	if patch.Avatar != "" {
		m.user.Avatar = patch.Avatar
	}
	if patch.Bio != "" {
		m.user.Bio = patch.Bio
	}
}

// discardToken clears token and identity together so consumers never observe
// one without the other.
func (m *Manager) discardToken() {
	if err := m.store.Clear(); err != nil {
		m.logger.Errorf("failed to clear token store: %v", err)
	}
	m.user = nil
}

// failure converts an API error into a Result, preferring the server's detail message.
func failure(err error, fallback string) Result {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return Result{Error: apiErr.Detail}
	}
	return Result{Error: fallback}
}
