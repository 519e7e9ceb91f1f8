package service

import (
	"context"
	"time"

	"expense-tracker/internal/logging"
	"expense-tracker/internal/ports"
)

// SweeperLockKey : ключ блокировки в Redis, общий для всех экземпляров
const SweeperLockKey = "refresh-token-cleanup"

// Sweeper периодически удаляет устаревшие refresh токены.
// Ошибки пишутся в лог, следующая попытка будет на следующем тике.
type Sweeper struct {
	store    ports.RefreshTokenStore
	locks    ports.LockRepository
	clock    ports.Clock
	logger   logging.Logger
	interval time.Duration
	lockTTL  time.Duration
}

// NewSweeper : locks может быть nil, тогда очистка идет без блокировки
func NewSweeper(
	store ports.RefreshTokenStore,
	locks ports.LockRepository,
	clock ports.Clock,
	logger logging.Logger,
	interval time.Duration,
	lockTTL time.Duration,
) *Sweeper {
	return &Sweeper{
		store:    store,
		locks:    locks,
		clock:    clock,
		logger:   logger.With("module", "sweeper"),
		interval: interval,
		lockTTL:  lockTTL,
	}
}

// Run блокируется до отмены ctx; запускать в отдельной горутине
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "очистка токенов запущена", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "очистка токенов остановлена")
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход очистки и возвращает число удаленных записей.
// Если блокировку держит другой экземпляр, проход пропускается.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.locks != nil {
		acquired, err := s.locks.TryLock(ctx, SweeperLockKey, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "блокировка недоступна, очистка без нее", "error", err)
		case !acquired:
			s.logger.Debug(ctx, "очистку выполняет другой экземпляр")
			return 0, nil
		default:
			defer func() {
				if err := s.locks.Unlock(context.WithoutCancel(ctx), SweeperLockKey); err != nil {
					s.logger.Warn(ctx, "не удалось снять блокировку", "error", err)
				}
			}()
		}
	}

	deleted, err := s.store.Cleanup(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error(ctx, "ошибка очистки токенов", "error", err)
		return 0, err
	}

	s.logger.Info(ctx, "очистка токенов завершена", "deleted", deleted)
	return deleted, nil
}
