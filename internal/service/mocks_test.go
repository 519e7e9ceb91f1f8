package service_test

import (
	"context"
	"sync"
	"time"

	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	args := m.Called(ctx, exec, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error) {
	args := m.Called(ctx, exec, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (bool, error) {
	args := m.Called(ctx, exec, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	args := m.Called(ctx, exec, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	var exec sqlx.ExtContext
	if e := args.Get(0); e != nil {
		exec = e.(sqlx.ExtContext)
	}
	var rollback, commit func() error
	if r := args.Get(1); r != nil {
		rollback = r.(func() error)
	}
	if c := args.Get(2); c != nil {
		commit = c.(func() error)
	}
	return exec, rollback, commit, args.Error(3)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) error {
	args := m.Called(ctx, exec, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, exec, token)
	if t, ok := args.Get(0).(*model.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (bool, error) {
	args := m.Called(ctx, exec, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeAllByUser(ctx context.Context, exec sqlx.ExtContext, userUUID string) (int64, error) {
	args := m.Called(ctx, exec, userUUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeActive(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (string, error) {
	args := m.Called(ctx, exec, token, now)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteStale(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, exec, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	var exec sqlx.ExtContext
	if e := args.Get(0); e != nil {
		exec = e.(sqlx.ExtContext)
	}
	var rollback, commit func() error
	if r := args.Get(1); r != nil {
		rollback = r.(func() error)
	}
	if c := args.Get(2); c != nil {
		commit = c.(func() error)
	}
	return exec, rollback, commit, args.Error(3)
}

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	args := m.Called(ctx, username, email, password)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) Verify(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) Create(ctx context.Context, userUUID string, now time.Time) (string, error) {
	args := m.Called(ctx, userUUID, now)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshTokenStore) Validate(ctx context.Context, token string, now time.Time) (string, error) {
	args := m.Called(ctx, token, now)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshTokenStore) Revoke(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenStore) RevokeAll(ctx context.Context, userUUID string) (int64, error) {
	args := m.Called(ctx, userUUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenStore) Rotate(ctx context.Context, token string, now time.Time) (string, string, error) {
	args := m.Called(ctx, token, now)
	return args.String(0), args.String(1), args.Error(2)
}

type MockAccessTokenIssuer struct {
	mock.Mock
}

func (m *MockAccessTokenIssuer) Mint(subject string, now time.Time) (string, error) {
	args := m.Called(subject, now)
	return args.String(0), args.Error(1)
}

func (m *MockAccessTokenIssuer) Verify(token string, now time.Time) (string, error) {
	args := m.Called(token, now)
	return args.String(0), args.Error(1)
}

type MockLockRepository struct {
	mock.Mock
}

func (m *MockLockRepository) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockRepository) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// ===== HELPERS =====

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func noopTx() (func() error, func() error) {
	return func() error { return nil }, func() error { return nil }
}
