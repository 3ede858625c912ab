package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	tokens := New("test-secret", time.Hour)

	token, err := tokens.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tokens.GetUserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestGetUserID_WrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Hour).Generate("user-123")
	require.NoError(t, err)

	_, err = New("secret-b", time.Hour).GetUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserID_Expired(t *testing.T) {
	token, err := New("test-secret", -time.Minute).Generate("user-123")
	require.NoError(t, err)

	_, err = New("test-secret", -time.Minute).GetUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserID_Garbage(t *testing.T) {
	_, err := New("test-secret", time.Hour).GetUserID("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
