package services

import (
	"context"
	"testing"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterFirstUserIsAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), testutil.NewTestConfig())
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterInput{Username: " tesorera ", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "tesorera", first.User.Username)
	assert.Equal(t, string(domain.RoleAdmin), first.User.Role)
	assert.NotEmpty(t, first.AccessToken)

	second, err := svc.Register(ctx, &RegisterInput{Username: "auxiliar", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleOperator), second.User.Role)

	claims, err := svc.ValidateAccessToken(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, claims.UserID)
	assert.Equal(t, "auxiliar", claims.Username)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), testutil.NewTestConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Username: "tesorera", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.Register(ctx, &RegisterInput{Username: "ab", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, &RegisterInput{Username: "tesorera", Password: "clave-segura"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &RegisterInput{Username: "tesorera", Password: "otra-clave-1"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), testutil.NewTestConfig())
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterInput{Username: "tesorera", Password: "clave-segura"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginInput{Username: "tesorera", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, &LoginInput{Username: "tesorera", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrLoginFailed)

	_, err = svc.Login(ctx, &LoginInput{Username: "nadie", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrLoginFailed)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginInput{Username: "tesorera", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUserInactive)

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
