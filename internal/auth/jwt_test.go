package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tk, err := NewTokens(secret, "boardroom", time.Hour)
	require.NoError(t, err)
	return tk.WithClock(func() time.Time { return now })
}

func TestIssueAndValidate(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	tk := newTokens(t, now)

	token, err := tk.Issue(types.Identity{UserID: "u-1", Role: types.RoleAdmin})
	require.NoError(t, err)

	id, err := tk.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestValidateRejects(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	tk := newTokens(t, now)
	token, err := tk.Issue(types.Identity{UserID: "u-1"})
	require.NoError(t, err)

	other, err := NewTokens(strings.Repeat("x", MinSecretLen), "boardroom", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewTokens(secret, "elsewhere", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		tokens *Tokens
		token  string
	}{
		{"expired", newTokens(t, now.Add(2*time.Hour)), token},
		{"wrong secret", other.WithClock(func() time.Time { return now }), token},
		{"wrong issuer", otherIssuer.WithClock(func() time.Time { return now }), token},
		{"garbage", tk, "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tokens.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = tk.Validate("")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestNewTokensRejectsWeakSecret(t *testing.T) {
	_, err := NewTokens("short", "boardroom", 0)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueRequiresUser(t *testing.T) {
	tk := newTokens(t, time.Now())
	_, err := tk.Issue(types.Identity{Role: types.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
