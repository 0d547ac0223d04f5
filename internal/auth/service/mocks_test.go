package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
	authrepo "github.com/myhoard/backend/internal/auth/repository"
	"github.com/myhoard/backend/internal/auth/service"
	"github.com/myhoard/backend/internal/common/clock"
	"github.com/myhoard/backend/internal/common/logger"
	userdomain "github.com/myhoard/backend/internal/user/domain"
	userrepo "github.com/myhoard/backend/internal/user/repository"
)

type mockUserRepo struct {
	createFunc           func(ctx context.Context, user userdomain.User) error
	findByCredentialFunc func(ctx context.Context, kind userdomain.CredentialKind, value string) (userdomain.User, error)
	findByIDFunc         func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByCredential(ctx context.Context, kind userdomain.CredentialKind, value string) (userdomain.User, error) {
	if m.findByCredentialFunc != nil {
		return m.findByCredentialFunc(ctx, kind, value)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

type mockTokenStore struct {
	insertFunc             func(ctx context.Context, token authdomain.Token) error
	findByAccessTokenFunc  func(ctx context.Context, value string) (authdomain.Token, error)
	findByRefreshTokenFunc func(ctx context.Context, value string) (authdomain.Token, error)
	updateFunc             func(ctx context.Context, token authdomain.Token) error
	deleteExpiredFunc      func(ctx context.Context) (int64, error)
}

func (m *mockTokenStore) Insert(ctx context.Context, token authdomain.Token) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, token)
	}
	return nil
}

func (m *mockTokenStore) FindByAccessToken(ctx context.Context, value string) (authdomain.Token, error) {
	if m.findByAccessTokenFunc != nil {
		return m.findByAccessTokenFunc(ctx, value)
	}
	return authdomain.Token{}, authrepo.ErrTokenNotFound
}

func (m *mockTokenStore) FindByRefreshToken(ctx context.Context, value string) (authdomain.Token, error) {
	if m.findByRefreshTokenFunc != nil {
		return m.findByRefreshTokenFunc(ctx, value)
	}
	return authdomain.Token{}, authrepo.ErrTokenNotFound
}

func (m *mockTokenStore) Update(ctx context.Context, token authdomain.Token) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, token)
	}
	return nil
}

func (m *mockTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockGenerator struct {
	newIDFunc    func() (string, error)
	newTokenFunc func() (string, error)
}

func (m *mockGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return uuid.NewString(), nil
}

func (m *mockGenerator) NewToken() (string, error) {
	if m.newTokenFunc != nil {
		return m.newTokenFunc()
	}
	return uuid.NewString(), nil
}

const testKeepAlive = 3600 * time.Second

func setupTokenService(t *testing.T) (*service.TokenService, *mockUserRepo, *mockTokenStore, *mockHasher, *mockGenerator, *clock.MockClock) {
	t.Helper()

	users := &mockUserRepo{}
	store := &mockTokenStore{}
	hasher := &mockHasher{}
	generator := &mockGenerator{}
	clk := clock.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	svc := service.NewTokenService(users, store, hasher, generator, clk, testKeepAlive, log)
	return svc, users, store, hasher, generator, clk
}
