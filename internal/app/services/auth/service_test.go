package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "staymarket/internal/domain/auth"
	domainuser "staymarket/internal/domain/user"
	"staymarket/internal/infra/security"
	"staymarket/internal/infra/storage/memory"
)

func newService(ttl time.Duration) *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: ttl,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{
		Email:    "Ana@Example.com",
		Name:     "Ana",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "ana@example.com", registered.User.Email)
	require.True(t, registered.User.HasRole(domainuser.RoleGuest))
	require.False(t, registered.User.HasRole(domainuser.RoleHost))

	loggedIn, err := svc.Login(ctx, LoginParams{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, LoginParams{Email: "ana@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, RegisterParams{Name: "A", Password: "long enough"})
	require.ErrorIs(t, err, domainuser.ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "B", Password: "long enough"})
	require.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterWithHostIntent(t *testing.T) {
	svc := newService(time.Hour)
	result, err := svc.Register(context.Background(), RegisterParams{
		Email:      "host@example.com",
		Name:       "Hosty",
		Password:   "long enough",
		WantToHost: true,
	})
	require.NoError(t, err)
	require.True(t, result.User.HasRole(domainuser.RoleHost))
}

func TestBecomeHost(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)

	user, err := svc.BecomeHost(ctx, registered.User.ID)
	require.NoError(t, err)
	require.True(t, user.HasRole(domainuser.RoleHost))

	// Granting twice is harmless.
	user, err = svc.BecomeHost(ctx, registered.User.ID)
	require.NoError(t, err)
	require.True(t, user.HasRole(domainuser.RoleHost))
}

func TestResolveTokenLifecycle(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, registered.Token)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, resolved.User.ID)

	require.NoError(t, svc.Logout(ctx, registered.Token))
	_, err = svc.ResolveToken(ctx, registered.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenExpired(t *testing.T) {
	svc := newService(time.Nanosecond)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "long enough"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.ResolveToken(ctx, registered.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
