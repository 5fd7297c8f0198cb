package worker

import (
	"context"
	"fmt"
	"time"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"
	"sewa/services/eligibility"
	"sewa/services/notification"
	"sewa/services/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type WorkerService interface {
	// Registration
	Register(ctx context.Context, req models.WorkerRegistrationData) (*models.WorkerAuthResponse, error)

	// Snapshot and eligibility
	GetWorker(ctx context.Context, id string) (*models.Worker, error)
	GetEligibility(ctx context.Context, id string) (eligibility.Report, error)
	CheckPermission(ctx context.Context, id string, action eligibility.Action) error

	// State changes
	SetOnline(ctx context.Context, id string, online bool) (*models.Worker, error)
	AuthorizeBooking(ctx context.Context, id string) error
	UploadDocument(ctx context.Context, id string, kind models.DocumentKind, localFilePath string) (*models.Worker, error)
	ReadDocument(ctx context.Context, id string, kind models.DocumentKind) ([]byte, error)
	UpdateServiceCategories(ctx context.Context, id string, categories []string) (*models.Worker, error)
	UpdateFCMToken(ctx context.Context, id, token string) error

	// App lock
	SetAppLockPIN(ctx context.Context, id, pin string) error
	VerifyAppLockPIN(ctx context.Context, id, pin string) error
	ClearAppLock(ctx context.Context, id, pin string) error
}

// DefaultWorkerService is the production implementation.
type DefaultWorkerService struct {
	Repo   workerRepo.WorkerRepository
	Cache  SnapshotCache
	Store  storage.DocumentStore
	Push   notification.NotificationService
	Logger *zap.Logger

	AppLockMaxAttempts int
	AppLockCooldown    time.Duration
	PINCost            int

	now func() time.Time
}

func NewDefaultWorkerService(
	repo workerRepo.WorkerRepository,
	cache SnapshotCache,
	store storage.DocumentStore,
	push notification.NotificationService,
	logger *zap.Logger,
) (*DefaultWorkerService, error) {
	if repo == nil || store == nil || logger == nil {
		return nil, fmt.Errorf("worker service initialization error: one or more dependencies are nil")
	}
	if cache == nil {
		cache = NoopSnapshotCache{}
	}
	return &DefaultWorkerService{
		Repo:               repo,
		Cache:              cache,
		Store:              store,
		Push:               push,
		Logger:             logger,
		AppLockMaxAttempts: 5,
		AppLockCooldown:    15 * time.Minute,
		PINCost:            bcrypt.DefaultCost,
		now:                time.Now,
	}, nil
}

func (s *DefaultWorkerService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
