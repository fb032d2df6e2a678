package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionDuration is used when no TTL is configured
	DefaultSessionDuration = 7 * 24 * time.Hour

	// MinSecretLength is the shortest accepted HMAC key in bytes
	MinSecretLength = 32

	tokenIssuer = "arenaapi"
)

var (
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionClaims are the JWT claims carried by a session token. The token ID
// (jti) is the session row ID; Subject is the user ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session row the token refers to.
func (c *SessionClaims) SessionID() string { return c.ID }

// UserID returns the user the session belongs to.
func (c *SessionClaims) UserID() string { return c.Subject }

// IssuedToken is a freshly signed session token and its storage hash.
type IssuedToken struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A nil or short secret is rejected.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// GenerateSecret returns a random secret suitable for NewTokenIssuer.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return secret, nil
}

// TTL returns the configured session lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the given session and user.
func (i *TokenIssuer) Issue(sessionID, userID string) (IssuedToken, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign session token: %w", err)
	}

	return IssuedToken{Token: token, Hash: HashToken(token), ExpiresAt: expiresAt}, nil
}

// Parse verifies the signature and time claims of a token.
func (i *TokenIssuer) Parse(token string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing jti or sub", ErrInvalidToken)
	}
	return claims, nil
}

// HashToken hashes a session token for storage/lookup
// Returns SHA256 hex hash
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
