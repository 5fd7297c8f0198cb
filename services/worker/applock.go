package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetAppLockPIN sets or replaces the app-lock PIN and clears any failure state.
func (s *DefaultWorkerService) SetAppLockPIN(ctx context.Context, id, pin string) error {
	if !validPIN(pin) {
		return ErrPINFormat
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.PINCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	lock := models.AppLock{PINHash: string(hash), UpdatedAt: s.clock()}
	if err := s.Repo.SetAppLock(ctx, id, lock); err != nil {
		return s.wrapNotFound(err, "failed to save app lock")
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

// VerifyAppLockPIN checks pin. After AppLockMaxAttempts consecutive failures the lock
// refuses all attempts for AppLockCooldown. Failures are counted by the repository
// so concurrent guesses cannot overwrite each other.
func (s *DefaultWorkerService) VerifyAppLockPIN(ctx context.Context, id, pin string) error {
	w, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	lock := w.AppLock
	if !lock.Enabled() {
		return ErrAppLockNotSet
	}

	now := s.clock()
	if now.Before(lock.LockedUntil) {
		return ErrAppLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(lock.PINHash), []byte(pin)) == nil {
		if lock.FailedAttempts == 0 && lock.LockedUntil.IsZero() {
			return nil
		}
		lock.FailedAttempts = 0
		lock.LockedUntil = time.Time{}
		return s.saveLock(ctx, id, lock, now)
	}

	updated, err := s.Repo.RecordFailedPIN(ctx, id, s.AppLockMaxAttempts, s.AppLockCooldown, now)
	if err != nil {
		return s.wrapNotFound(err, "failed to record PIN failure")
	}
	s.Cache.Invalidate(ctx, id)
	if now.Before(updated.LockedUntil) {
		s.Logger.Warn("app lock engaged after repeated failures", zap.String("workerID", id))
		return ErrAppLocked
	}
	return ErrInvalidPIN
}

// ClearAppLock removes the PIN after confirming the current one.
func (s *DefaultWorkerService) ClearAppLock(ctx context.Context, id, pin string) error {
	if err := s.VerifyAppLockPIN(ctx, id, pin); err != nil {
		return err
	}
	if err := s.Repo.SetAppLock(ctx, id, models.AppLock{UpdatedAt: s.clock()}); err != nil {
		return s.wrapNotFound(err, "failed to clear app lock")
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

func (s *DefaultWorkerService) saveLock(ctx context.Context, id string, lock models.AppLock, now time.Time) error {
	lock.UpdatedAt = now
	if err := s.Repo.SetAppLock(ctx, id, lock); err != nil {
		return s.wrapNotFound(err, "failed to update app lock")
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

func (s *DefaultWorkerService) wrapNotFound(err error, msg string) error {
	if errors.Is(err, workerRepo.ErrWorkerNotFound) {
		return ErrWorkerNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
