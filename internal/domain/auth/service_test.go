package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	view, err := svc.Register(context.Background(), RegisterRequest{
		Username: "Ada L",
		Email:    "Ada@Example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", view.Email)
	require.Equal(t, "Ada L", view.Username)
	require.NotZero(t, view.ID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.ID, resp.UserID)
	require.Equal(t, "Ada L", resp.Name)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(5*time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "Ada L", refreshed.User.Username)

	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "one", Email: "user@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "two", Email: "USER@example.com", Password: "pass12345"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmailExists))
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	long := "abcdefghijklmnopqrstuvwxyzabcdefg"

	cases := map[string]RegisterRequest{
		"bad email":      {Username: "a", Email: "nope", Password: "pass1234"},
		"named address":  {Username: "a", Email: "Ada <ada@example.com>", Password: "pass1234"},
		"empty username": {Username: "  ", Email: "a@example.com", Password: "pass1234"},
		"long username":  {Username: long, Email: "a@example.com", Password: "pass1234"},
		"short password": {Username: "a", Email: "a@example.com", Password: "short"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Username: "a", Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrongpass"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Username: "a", Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)

	issued := time.Now().Add(-6 * time.Hour)
	svc.now = func() time.Time { return issued }
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	other := NewService(Config{Secret: "other", TokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, newMemoryRepo(), newTestLogger())
	fresh, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)
	_, err = other.ValidateToken(context.Background(), fresh.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_Profile(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	view, err := svc.Register(context.Background(), RegisterRequest{Username: "a", Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, view, profile)

	_, err = svc.Profile(context.Background(), 999)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func newTestService(repo Repository) *service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        5 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, repo, newTestLogger()).(*service)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (m *memoryRepo) Create(_ context.Context, email, username, passwordHash string) (User, error) {
	m.seq++
	user := User{
		ID:           m.seq,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}
