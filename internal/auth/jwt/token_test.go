package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), Issuer: "idp"})

	token, err := m.Issue("user-1", "ana@example.com")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := NewManager(TokenConfig{Secret: []byte("other"), Issuer: "idp"})
	token, err := issuer.Issue("user-1", "")
	require.NoError(t, err)

	_, err = NewManager(TokenConfig{Secret: []byte("secret"), Issuer: "idp"}).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	token, err := NewManager(TokenConfig{Secret: []byte("secret"), Issuer: "someone-else"}).Issue("user-1", "")
	require.NoError(t, err)

	_, err = NewManager(TokenConfig{Secret: []byte("secret"), Issuer: "idp"}).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), AccessTTL: time.Minute})
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue("user-1", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbage(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret")})
	_, err := m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresSubject(t *testing.T) {
	_, err := NewManager(TokenConfig{Secret: []byte("secret")}).Issue("", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
