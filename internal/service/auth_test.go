package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/security"
	"propdesk-backend/internal/service"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)

	user := &domain.User{ID: 7, Email: "agent@example.com", PasswordHash: string(hash), Role: domain.UserRoleAgent, IsActive: true}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		users.On("GetByEmail", ctx, "agent@example.com").Return(user, nil).Once()

		token, got, err := svc.Login(ctx, " Agent@Example.com ", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, domain.UserRoleAgent, claims.Role)
	})

	t.Run("Wrong password", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		users.On("GetByEmail", ctx, "agent@example.com").Return(user, nil).Once()

		_, _, err := svc.Login(ctx, "agent@example.com", "nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Disabled account", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, tokens)
		disabled := *user
		disabled.IsActive = false
		users.On("GetByEmail", ctx, "agent@example.com").Return(&disabled, nil).Once()

		_, _, err := svc.Login(ctx, "agent@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, service.ErrAccountDisabled)
	})
}
