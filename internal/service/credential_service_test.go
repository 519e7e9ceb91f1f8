package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"expense-tracker/internal/common"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/model"
	"expense-tracker/internal/security"
	"expense-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCredentialService(t *testing.T) (*service.CredentialService, *MockUserRepository) {
	t.Helper()
	repo := new(MockUserRepository)
	svc, err := service.NewCredentialService(repo, nil, newFakeClock(), logging.NewNopLogger())
	require.NoError(t, err)
	return svc, repo
}

func TestCredentialService_Register_Success(t *testing.T) {
	svc, repo := newTestCredentialService(t)
	ctx := context.Background()

	committed := false
	rollback := func() error { return nil }
	commit := func() error { committed = true; return nil }

	repo.On("BeginTX", ctx).Return(nil, rollback, commit, nil)
	repo.On("ExistsByUsername", ctx, mock.Anything, "alice").Return(false, nil)
	repo.On("ExistsByEmail", ctx, mock.Anything, "a@x.com").Return(false, nil)
	repo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		ok, _ := security.CheckPassword(u.PasswordHash, "pw1")
		return u.Username == "alice" && u.Email == "a@x.com" && u.UUID != "" && ok && u.CreatedAt.Equal(baseTime)
	})).Return(&model.User{UUID: "u1", Username: "alice", Email: "a@x.com"}, nil)

	user, err := svc.Register(ctx, " alice ", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	assert.True(t, committed)
	repo.AssertExpectations(t)
}

func TestCredentialService_Register_Duplicates(t *testing.T) {
	tests := []struct {
		name          string
		usernameTaken bool
		emailTaken    bool
		wantErr       error
	}{
		{"username taken", true, false, common.ErrDuplicateUsername},
		{"email taken", false, true, common.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestCredentialService(t)
			ctx := context.Background()
			rollback, commit := noopTx()

			repo.On("BeginTX", ctx).Return(nil, rollback, commit, nil)
			repo.On("ExistsByUsername", ctx, mock.Anything, "alice").Return(tt.usernameTaken, nil)
			repo.On("ExistsByEmail", ctx, mock.Anything, "a@x.com").Return(tt.emailTaken, nil).Maybe()

			_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, common.ErrDuplicateUser)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCredentialService_Register_RaceOnInsert(t *testing.T) {
	svc, repo := newTestCredentialService(t)
	ctx := context.Background()

	rolledBack := false
	rollback := func() error { rolledBack = true; return nil }
	commit := func() error { t.Fatal("commit must not be called"); return nil }

	repo.On("BeginTX", ctx).Return(nil, rollback, commit, nil)
	repo.On("ExistsByUsername", ctx, mock.Anything, "alice").Return(false, nil)
	repo.On("ExistsByEmail", ctx, mock.Anything, "a@x.com").Return(false, nil)
	repo.On("CreateUser", ctx, mock.Anything, mock.Anything).Return(nil, common.ErrDuplicateEmail)

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.True(t, rolledBack)
}

func TestCredentialService_Register_InvalidInput(t *testing.T) {
	svc, repo := newTestCredentialService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@x.com", "pw1"},
		{"blank username", "   ", "a@x.com", "pw1"},
		{"empty password", "alice", "a@x.com", ""},
		{"bad email", "alice", "not-an-email", "pw1"},
		{"email with name", "alice", "Alice <a@x.com>", "pw1"},
		{"long username", strings.Repeat("a", 65), "a@x.com", "pw1"},
		{"long password", "alice", "a@x.com", strings.Repeat("p", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
	repo.AssertNotCalled(t, "BeginTX", mock.Anything)
}

func TestCredentialService_Register_StoreUnavailable(t *testing.T) {
	svc, repo := newTestCredentialService(t)
	ctx := context.Background()

	repo.On("BeginTX", ctx).Return(nil, nil, nil, common.StoreError("begin", errors.New("db down")))

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestCredentialService_Verify(t *testing.T) {
	hash, err := security.HashPassword("pw1")
	require.NoError(t, err)
	alice := &model.User{UUID: "u1", Username: "alice", PasswordHash: hash}

	tests := []struct {
		name     string
		username string
		password string
		found    *model.User
		wantErr  error
	}{
		{"correct password", "alice", "pw1", alice, nil},
		{"wrong password", "alice", "pw2", alice, common.ErrInvalidCredentials},
		{"unknown user", "bob", "pw1", nil, common.ErrInvalidCredentials},
		{"corrupted hash", "alice", "pw1", &model.User{UUID: "u1", PasswordHash: "garbage"}, common.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestCredentialService(t)
			ctx := context.Background()
			repo.On("FindByUsername", ctx, mock.Anything, tt.username).Return(tt.found, nil)

			user, err := svc.Verify(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", user.UUID)
		})
	}
}

func TestCredentialService_Verify_StoreUnavailable(t *testing.T) {
	svc, repo := newTestCredentialService(t)
	ctx := context.Background()
	repo.On("FindByUsername", ctx, mock.Anything, "alice").
		Return(nil, common.StoreError("select", errors.New("timeout")))

	_, err := svc.Verify(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestCredentialService_FindByUUID(t *testing.T) {
	svc, repo := newTestCredentialService(t)
	ctx := context.Background()

	repo.On("FindByUUID", ctx, mock.Anything, "u1").Return(&model.User{UUID: "u1"}, nil)
	repo.On("FindByUUID", ctx, mock.Anything, "gone").Return(nil, nil)

	user, err := svc.FindByUUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)

	_, err = svc.FindByUUID(ctx, "gone")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestCredentialService_PaddedUsernameRoundTrip(t *testing.T) {
	svc, err := service.NewCredentialService(newMemoryUserRepository(), nil, newFakeClock(), logging.NewNopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice ", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Username)

	for _, username := range []string{"alice ", "alice", "  alice"} {
		user, err := svc.Verify(ctx, username, "pw1")
		require.NoErrorf(t, err, "username %q", username)
		assert.Equal(t, registered.UUID, user.UUID)
	}
}

func TestCredentialService_Verify_RejectsPasswordBeyondBcryptLimit(t *testing.T) {
	password := strings.Repeat("p", security.MaxPasswordBytes)
	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	svc, repo := newTestCredentialService(t)
	ctx := context.Background()
	repo.On("FindByUsername", ctx, mock.Anything, "alice").
		Return(&model.User{UUID: "u1", Username: "alice", PasswordHash: hash}, nil)

	user, err := svc.Verify(ctx, "alice", password)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)

	_, err = svc.Verify(ctx, "alice", password+"suffix")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}
