package workerRepo

import (
	"context"
	"errors"
	"time"

	"sewa/models"
)

var (
	// ErrWorkerNotFound is returned when no worker matches the given id or email.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrEmailTaken is returned by Create when another worker already has the email.
	ErrEmailTaken = errors.New("email already registered")
)

// WorkerRepository defines methods for worker data access.
type WorkerRepository interface {
	// GetByID retrieves a worker by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Worker, error)
	// GetByEmail retrieves a worker by email address.
	GetByEmail(ctx context.Context, email string) (*models.Worker, error)
	// Create inserts a new worker record.
	Create(ctx context.Context, worker *models.Worker) error
	// List returns workers matching filter, newest first.
	List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, error)

	SetActive(ctx context.Context, id string, active bool) error
	SetDocument(ctx context.Context, id string, kind models.DocumentKind, ref string) error
	SetOverallStatus(ctx context.Context, id string, status models.VerificationStatus, note string) error
	SetCategoryStatus(ctx context.Context, id, category string, status models.VerificationStatus) error
	SetServiceCategories(ctx context.Context, id string, categories []string) error
	SetFCMToken(ctx context.Context, id, token string) error
	SetTokenHash(ctx context.Context, id, tokenHash string) error
	SetAppLock(ctx context.Context, id string, lock models.AppLock) error
	// RecordFailedPIN atomically counts one failed PIN attempt made at now. The
	// attempt that reaches maxAttempts resets the counter and locks until
	// now+cooldown; attempts made while locked change nothing. It returns the
	// resulting lock state.
	RecordFailedPIN(ctx context.Context, id string, maxAttempts int, cooldown time.Duration, now time.Time) (*models.AppLock, error)
}
