// Package auth issues and validates signed identity tokens for the HTTP
// shell. A token carries the user id as subject and the role as a claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// MinSecretLen is the shortest accepted HS256 secret.
const MinSecretLen = 32

// DefaultTTL is the lifetime of issued tokens.
const DefaultTTL = 12 * time.Hour

// Token errors.
var (
	ErrWeakSecret   = errors.New("token secret is too short")
	ErrEmptyToken   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
)

// claims extends the registered claims with the user's role.
type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Tokens signs and verifies HS256 identity tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

// NewTokens returns a token manager. ttl <= 0 uses DefaultTTL.
func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, clock: time.Now}, nil
}

// WithClock replaces the clock used for issuing and expiry checks.
func (t *Tokens) WithClock(clock func() time.Time) *Tokens {
	t.clock = clock
	return t
}

// Issue signs a token for id.
func (t *Tokens) Issue(id types.Identity) (string, error) {
	if id.UserID == "" {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}
	now := t.clock()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: id.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses token and returns the identity it carries.
func (t *Tokens) Validate(token string) (*types.Identity, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &types.Identity{UserID: c.Subject, Role: c.Role}, nil
}
