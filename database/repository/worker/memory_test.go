package workerRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"sewa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWorkerRepo_CopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	w := &models.Worker{ID: "w1", Email: "a@b.c", Documents: map[models.DocumentKind]string{}}
	repo := NewMemoryWorkerRepo(w)

	w.Documents[models.DocumentCertificate] = "leaked"
	got, err := repo.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Empty(t, got.Documents)

	got.Documents[models.DocumentCertificate] = "leaked"
	again, _ := repo.GetByID(ctx, "w1")
	assert.Empty(t, again.Documents)
}

func TestMemoryWorkerRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryWorkerRepo()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	_, err = repo.GetByEmail(ctx, "missing@x.y")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	assert.ErrorIs(t, repo.SetActive(ctx, "missing", true), ErrWorkerNotFound)
}

func TestMemoryWorkerRepo_ListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewMemoryWorkerRepo(
		&models.Worker{ID: "old", VerificationStatus: models.StatusPending, CreatedAt: now.Add(-time.Hour)},
		&models.Worker{ID: "new", VerificationStatus: models.StatusPending, IsActive: true, CreatedAt: now},
		&models.Worker{ID: "ok", VerificationStatus: models.StatusVerified, CreatedAt: now.Add(-time.Minute)},
	)

	pending := models.StatusPending
	got, err := repo.List(ctx, models.WorkerFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)

	active := true
	got, _ = repo.List(ctx, models.WorkerFilter{IsActive: &active})
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)

	got, _ = repo.List(ctx, models.WorkerFilter{Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestMemoryWorkerRepo_CreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryWorkerRepo(&models.Worker{ID: "w1", Email: "a@b.c"})

	err := repo.Create(ctx, &models.Worker{ID: "w2", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = repo.GetByID(ctx, "w2")
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	require.NoError(t, repo.Create(ctx, &models.Worker{ID: "w3", Email: "d@e.f"}))
}

func TestMemoryWorkerRepo_RecordFailedPIN(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryWorkerRepo(&models.Worker{ID: "w1", AppLock: models.AppLock{PINHash: "h"}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i < 3; i++ {
		lock, err := repo.RecordFailedPIN(ctx, "w1", 3, time.Minute, now)
		require.NoError(t, err)
		assert.Equal(t, i, lock.FailedAttempts)
		assert.True(t, lock.LockedUntil.IsZero())
	}

	lock, err := repo.RecordFailedPIN(ctx, "w1", 3, time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, 0, lock.FailedAttempts)
	assert.Equal(t, now.Add(time.Minute), lock.LockedUntil)

	// Attempts during the cooldown leave the lock alone.
	lock, err = repo.RecordFailedPIN(ctx, "w1", 3, time.Minute, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, lock.FailedAttempts)
	assert.Equal(t, now.Add(time.Minute), lock.LockedUntil)

	lock, err = repo.RecordFailedPIN(ctx, "w1", 3, time.Minute, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, lock.FailedAttempts)

	_, err = repo.RecordFailedPIN(ctx, "missing", 3, time.Minute, now)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestMemoryWorkerRepo_RecordFailedPINConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryWorkerRepo(&models.Worker{ID: "w1", AppLock: models.AppLock{PINHash: "h"}})
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordFailedPIN(ctx, "w1", 5, time.Minute, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	w, err := repo.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), w.AppLock.LockedUntil)
	assert.Equal(t, 0, w.AppLock.FailedAttempts)
}
