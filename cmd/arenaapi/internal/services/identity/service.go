// Package identity implements the session store: account registration,
// password sign-in, sign-out and session lookup for incoming requests.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned when a disabled account tries to sign in.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrEmailTaken is returned when signing up with an email already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidEmail is returned for an email without a local part and domain.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password is too short")
	// ErrInvalidRole is returned for a sign-up role outside the vocabulary.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidSession is returned for tokens that do not map to a session.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired is returned for revoked or expired sessions.
	ErrSessionExpired = errors.New("session expired")
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Credentials identify an account.
type Credentials struct {
	Email    string
	Password string
}

// Attributes are the profile fields captured at sign-up. A blank Role leaves
// the profile role unset; unrecognised values are rejected with ErrInvalidRole.
type Attributes struct {
	Username      string
	FullName      string
	InstituteName string
	Role          string
}

// ClientMeta describes the client a session is issued to.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// Session is an established session. Token is only populated when the
// session was just issued.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Service is the session store contract consumed by HTTP handlers and the
// session middleware.
type Service interface {
	// SignUp registers an account with its profile and signs it in.
	SignUp(ctx context.Context, creds Credentials, attrs Attributes, meta ClientMeta) (*Session, error)
	// SignIn verifies the password and issues a new session.
	SignIn(ctx context.Context, creds Credentials, meta ClientMeta) (*Session, error)
	// SignOut revokes the session. Unknown sessions are ignored.
	SignOut(ctx context.Context, sessionID string) error
	// GetSession resolves a presented token to its live session.
	GetSession(ctx context.Context, token string) (*Session, error)
	// PurgeExpired deletes sessions that expired before now.
	PurgeExpired(ctx context.Context) (int64, error)
}

// compile-time check
var _ Service = (*service)(nil)

// sessionFrom projects a session row onto the service type.
func sessionFrom(row *models.Session, email, token string) *Session {
	return &Session{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     email,
		Token:     token,
		ExpiresAt: row.ExpiresAt,
	}
}
