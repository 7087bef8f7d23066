// Package session manages the authenticated state of the client: login,
// registration, logout, password flows, and restore from the persisted
// token/user pair.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/refbridge/crms/internal/model"
)

// AuthAPI is the slice of the backend the session layer depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (model.User, string, error)
	Signup(ctx context.Context, in model.RegisterInput) error
	RequestPasswordReset(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, newPassword, resetToken string) error
}

// Manager holds the current auth state. It starts unauthenticated; Restore
// promotes a complete persisted pair without a server round-trip, deferring
// an expired or revoked token to the first API call's rejection.
type Manager struct {
	api     AuthAPI
	storage *Storage

	mu            sync.Mutex
	authenticated bool
	session       model.Session
	lastErr       string
}

// NewManager constructs a Manager over the given API and storage.
func NewManager(api AuthAPI, storage *Storage) *Manager {
	return &Manager{api: api, storage: storage}
}

// Restore loads the persisted session. Token and user must both be present;
// a partial pair counts as no session. A missing role defaults to "user".
func (m *Manager) Restore() bool {
	tok, okTok := m.storage.Get(keyToken)
	rawUser, okUser := m.storage.Get(keyUser)
	if !okTok || tok == "" || !okUser || rawUser == "" {
		return false
	}
	var u model.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return false
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	var exp time.Time
	if raw, ok := m.storage.Get(keyExpires); ok {
		_ = exp.UnmarshalText([]byte(raw))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = true
	m.session = model.Session{Token: tok, User: u, ExpiresAt: exp}
	return true
}

// Login authenticates and persists {token, user} as a unit.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	u, tok, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.setErr(err.Error())
		return err
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	exp := tokenExpiry(tok)

	rawUser, err := json.Marshal(u)
	if err != nil {
		m.setErr(err.Error())
		return err
	}
	pair := map[string]string{keyToken: tok, keyUser: string(rawUser)}
	if !exp.IsZero() {
		b, _ := exp.MarshalText()
		pair[keyExpires] = string(b)
	}
	if err := m.storage.SetAll(pair); err != nil {
		m.setErr(err.Error())
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = true
	m.session = model.Session{Token: tok, User: u, ExpiresAt: exp}
	m.lastErr = ""
	return nil
}

// Register creates the account and records the one-shot registration flag
// shown on the next login. It does not authenticate.
func (m *Manager) Register(ctx context.Context, in model.RegisterInput) error {
	if err := m.api.Signup(ctx, in); err != nil {
		m.setErr(err.Error())
		return err
	}
	_ = m.storage.Set(keyRegistry, "1")
	m.clearErr()
	return nil
}

// ConsumeRegistrationNotice reports and clears the one-shot flag set by a
// successful registration.
func (m *Manager) ConsumeRegistrationNotice() bool {
	if _, ok := m.storage.Get(keyRegistry); !ok {
		return false
	}
	_ = m.storage.Remove(keyRegistry)
	return true
}

// RequestPasswordReset asks for a reset mail. No session state changes.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	if err := m.api.RequestPasswordReset(ctx, email); err != nil {
		m.setErr(err.Error())
		return err
	}
	m.clearErr()
	return nil
}

// ChangePassword completes a reset flow with the mailed token.
func (m *Manager) ChangePassword(ctx context.Context, newPassword, resetToken string) error {
	if err := m.api.ChangePassword(ctx, newPassword, resetToken); err != nil {
		m.setErr(err.Error())
		return err
	}
	m.clearErr()
	return nil
}

// Logout clears the persisted pair and returns to unauthenticated.
func (m *Manager) Logout() error {
	err := m.storage.Remove(keyToken, keyUser, keyExpires)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = false
	m.session = model.Session{}
	m.lastErr = ""
	return err
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// User returns the current account (zero when unauthenticated).
func (m *Manager) User() model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.User
}

// Session returns a copy of the current session.
func (m *Manager) Session() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Token yields the bearer token for outgoing requests; empty when logged out.
// Shaped to plug in as the API client's token source.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// Err returns the last recorded auth error message, empty when none.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError drops the transient error message.
func (m *Manager) ClearError() { m.clearErr() }

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = msg
}

func (m *Manager) clearErr() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = ""
}

// tokenExpiry decodes the exp claim without verifying the signature. The
// value is diagnostics only; restore never rejects on expiry.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(tok, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
