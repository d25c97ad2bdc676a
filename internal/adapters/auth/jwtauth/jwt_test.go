package jwtauth

import (
	"context"
	"testing"
	"time"

	"get-a-pet/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.Issue(context.Background(), auth.Actor{ID: "507f1f77bcf86cd799439011", Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := New("a", time.Hour).Issue(context.Background(), auth.Actor{ID: "u1"})
	require.NoError(t, err)

	_, err = New("b", time.Hour).Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsExpired(t *testing.T) {
	svc := New("secret", time.Minute)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	token, err := svc.Issue(context.Background(), auth.Actor{ID: "u1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Empty(t *testing.T) {
	_, err := New("secret", time.Hour).Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestIssue_RequiresActorID(t *testing.T) {
	_, err := New("secret", time.Hour).Issue(context.Background(), auth.Actor{})
	assert.Error(t, err)
}
