package service_test

import (
	"context"
	"sync"
	"time"

	"expense-tracker/internal/common"
	"expense-tracker/internal/model"

	"github.com/jmoiron/sqlx"
)

// memoryUserRepository : in-memory реализация ports.UserRepository для сценарных тестов
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]model.User)}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, _ sqlx.ExtContext, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, common.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	r.users[user.UUID] = *user
	created := *user
	return &created, nil
}

func (r *memoryUserRepository) FindByUUID(_ context.Context, _ sqlx.ExtContext, uuid string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[uuid]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, _ sqlx.ExtContext, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) ExistsByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (bool, error) {
	u, err := r.FindByUsername(ctx, exec, username)
	return u != nil, err
}

func (r *memoryUserRepository) ExistsByEmail(_ context.Context, _ sqlx.ExtContext, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) BeginTX(context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	rollback, commit := noopTx()
	return nil, rollback, commit, nil
}

// memoryRefreshTokenRepository : in-memory таблица refresh_tokens
type memoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func newMemoryRefreshTokenRepository() *memoryRefreshTokenRepository {
	return &memoryRefreshTokenRepository{tokens: make(map[string]model.RefreshToken)}
}

func (r *memoryRefreshTokenRepository) Create(_ context.Context, _ sqlx.ExtContext, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = *token
	return nil
}

func (r *memoryRefreshTokenRepository) FindByToken(_ context.Context, _ sqlx.ExtContext, token string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrTokenNotFound
	}
	return &t, nil
}

func (r *memoryRefreshTokenRepository) Revoke(_ context.Context, _ sqlx.ExtContext, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || !t.IsActive {
		return false, nil
	}
	t.IsActive = false
	r.tokens[token] = t
	return true, nil
}

func (r *memoryRefreshTokenRepository) RevokeAllByUser(_ context.Context, _ sqlx.ExtContext, userUUID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, t := range r.tokens {
		if t.UserUUID == userUUID && t.IsActive {
			t.IsActive = false
			r.tokens[key] = t
			n++
		}
	}
	return n, nil
}

func (r *memoryRefreshTokenRepository) RevokeActive(_ context.Context, _ sqlx.ExtContext, token string, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || !t.IsActive || !t.ExpiresAt.After(now) {
		return "", common.ErrTokenRevoked
	}
	t.IsActive = false
	r.tokens[token] = t
	return t.UserUUID, nil
}

func (r *memoryRefreshTokenRepository) DeleteStale(_ context.Context, _ sqlx.ExtContext, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, key)
			n++
		}
	}
	return n, nil
}

func (r *memoryRefreshTokenRepository) BeginTX(context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	rollback, commit := noopTx()
	return nil, rollback, commit, nil
}

func (r *memoryRefreshTokenRepository) put(token model.RefreshToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
}

func (r *memoryRefreshTokenRepository) has(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[token]
	return ok
}
