package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuthService(f.userRepo)

	user, err := svc.Signup(ctx, SignupInput{Name: "Alice", Email: " Alice@Example.com ", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	requireCode(t, err, apierrors.ErrCodeUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "supersecret"})
	requireCode(t, err, apierrors.ErrCodeUnauthorized)

	_, err = svc.Signup(ctx, SignupInput{Name: "Alice 2", Email: "alice@example.com", Password: "supersecret"})
	requireCode(t, err, apierrors.ErrCodeConflict)
}

func TestAuthService_SignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuthService(f.userRepo)

	tests := []struct {
		name  string
		input SignupInput
	}{
		{"missing name", SignupInput{Email: "a@example.com", Password: "supersecret"}},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "supersecret"}},
		{"short password", SignupInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			requireCode(t, err, apierrors.ErrCodeValidation)
		})
	}
}

func TestAuthService_GetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuthService(f.userRepo)

	user := f.createUser(t, "carol")

	found, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", found.Name)

	_, err = svc.GetUser(ctx, 9999)
	requireCode(t, err, apierrors.ErrCodeNotFound)
}
