package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"memorabilia-market/internal/auth"
	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
	"memorabilia-market/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*AccountService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAccountService(repository.NewMemoryRepo(), tokens), tokens
}

func fan() Registration {
	return Registration{Username: "fan1", Email: "Fan1@Example.com", Password: "secret123", FullName: "Big Fan"}
}

// Tests Register
func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		mutate        func(r *Registration)
		expectedError error
	}{
		{name: "valid", mutate: func(r *Registration) {}},
		{name: "missing_username", mutate: func(r *Registration) { r.Username = " " }, expectedError: marketerrors.ErrInvalidUser},
		{name: "short_password", mutate: func(r *Registration) { r.Password = "123" }, expectedError: marketerrors.ErrInvalidUser},
		{name: "bad_email", mutate: func(r *Registration) { r.Email = "not-an-email" }, expectedError: marketerrors.ErrInvalidUser},
		{name: "display_name_email", mutate: func(r *Registration) { r.Email = "Big Fan <fan1@example.com>" }, expectedError: marketerrors.ErrInvalidUser},
		{name: "missing_email", mutate: func(r *Registration) { r.Email = "" }, expectedError: marketerrors.ErrInvalidUser},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, _ := newTestService()
			reg := fan()
			tc.mutate(&reg)

			user, err := service.Register(ctx, reg)
			if tc.expectedError != nil {
				require.True(t, errors.Is(err, tc.expectedError), "got: %v", err)
				return
			}

			require.NoError(t, err)
			require.NotZero(t, user.ID)
			require.Equal(t, "fan1@example.com", user.Email)
			require.False(t, user.IsAdmin)
			require.NotEqual(t, reg.Password, user.Password)
			require.True(t, auth.CheckPassword(user.Password, reg.Password))
		})
	}
}

// Tests that usernames and emails are unique
func TestAccountService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.Register(ctx, fan())
	require.NoError(t, err)

	_, err = service.Register(ctx, fan())
	require.True(t, errors.Is(err, marketerrors.ErrUserExists))

	other := fan()
	other.Username = "fan2"
	_, err = service.Register(ctx, other)
	require.True(t, errors.Is(err, marketerrors.ErrUserExists), "same email")
}

// Tests Login
func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()
	service, tokens := newTestService()

	registered, err := service.Register(ctx, fan())
	require.NoError(t, err)

	session, err := service.Login(ctx, "fan1", "secret123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, session.User.ID)

	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, registered.ID, id)
	require.False(t, claims.IsAdmin)

	_, err = service.Login(ctx, "fan1", "wrong-password")
	require.True(t, errors.Is(err, marketerrors.ErrInvalidCredentials))

	_, err = service.Login(ctx, "nobody", "secret123")
	require.True(t, errors.Is(err, marketerrors.ErrInvalidCredentials))
}

// Tests that storage failures are not reported as bad credentials
func TestAccountService_Login_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockMarketDB(ctrl)
	mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "fan1").Return(model.User{}, errors.New("db down"))

	service := NewAccountService(mockRepo, auth.NewTokenManager("s", time.Hour))
	_, err := service.Login(context.Background(), "fan1", "secret123")
	require.Error(t, err)
	require.False(t, errors.Is(err, marketerrors.ErrInvalidCredentials))
}

// Tests GetUser
func TestAccountService_GetUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	registered, err := service.Register(ctx, fan())
	require.NoError(t, err)

	user, err := service.GetUser(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, "fan1", user.Username)

	_, err = service.GetUser(ctx, 42)
	require.True(t, errors.Is(err, marketerrors.ErrUserNotFound))

	_, err = service.GetUser(ctx, 0)
	require.True(t, errors.Is(err, marketerrors.ErrUnauthorized))
}

// Tests EnsureAdmin is idempotent
func TestAccountService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	service, tokens := newTestService()
	reg := Registration{Username: "admin", Email: "admin@example.com", Password: "adminpass"}

	admin, err := service.EnsureAdmin(ctx, reg)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	again, err := service.EnsureAdmin(ctx, reg)
	require.NoError(t, err)
	require.Equal(t, admin.ID, again.ID)

	session, err := service.Login(ctx, "admin", "adminpass")
	require.NoError(t, err)
	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	require.True(t, claims.IsAdmin)

	skipped, err := service.EnsureAdmin(ctx, Registration{Username: "root"})
	require.NoError(t, err)
	require.Zero(t, skipped.ID)
}

// Tests that the admin bootstrap rejects addresses with a display name
func TestAccountService_EnsureAdmin_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.EnsureAdmin(ctx, Registration{
		Username: "siteadmin",
		Email:    "Site Admin <admin@example.com>",
		Password: "adminpass",
	})
	require.True(t, errors.Is(err, marketerrors.ErrInvalidUser), "got: %v", err)

	_, err = service.Login(ctx, "siteadmin", "adminpass")
	require.True(t, errors.Is(err, marketerrors.ErrInvalidCredentials), "no account stored")
}
