package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"
	"sewa/services/eligibility"
	"sewa/services/storage"
	"sewa/services/worker"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var (
	ErrInvalidStatus       = errors.New("invalid verification status")
	ErrDocumentsIncomplete = errors.New("required documents are missing")
	ErrCategoryNotDeclared = errors.New("worker has not declared this category")
)

// WorkerSummary pairs a worker record with its evaluated eligibility.
type WorkerSummary struct {
	Worker      models.Worker      `json:"worker"`
	Eligibility eligibility.Report `json:"eligibility"`
}

type AdminService interface {
	ReviewWorker(ctx context.Context, workerID string, status models.VerificationStatus, note string) (*models.Worker, error)
	ReviewCategory(ctx context.Context, workerID, category string, status models.VerificationStatus) (*models.Worker, error)
	ListWorkers(ctx context.Context, filter models.WorkerFilter) ([]WorkerSummary, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ReadWorkerDocument(ctx context.Context, workerID string, kind models.DocumentKind) ([]byte, error)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Repo     workerRepo.WorkerRepository
	Cache    worker.SnapshotCache
	Store    storage.DocumentStore
	Enqueuer Enqueuer
	Logger   *zap.Logger

	now func() time.Time
}

func NewDefaultAdminService(
	repo workerRepo.WorkerRepository,
	cache worker.SnapshotCache,
	store storage.DocumentStore,
	enqueuer Enqueuer,
	logger *zap.Logger,
) (*DefaultAdminService, error) {
	if repo == nil || store == nil || logger == nil {
		return nil, fmt.Errorf("admin service initialization error: repo, store or logger is nil")
	}
	if cache == nil {
		cache = worker.NoopSnapshotCache{}
	}
	return &DefaultAdminService{
		Repo:     repo,
		Cache:    cache,
		Store:    store,
		Enqueuer: enqueuer,
		Logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *DefaultAdminService) load(ctx context.Context, id string) (*models.Worker, error) {
	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, workerRepo.ErrWorkerNotFound) {
			return nil, worker.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	return w, nil
}

// ReadWorkerDocument returns the decrypted document for review.
func (s *DefaultAdminService) ReadWorkerDocument(ctx context.Context, workerID string, kind models.DocumentKind) ([]byte, error) {
	if !models.IsKnownDocumentKind(kind) {
		return nil, fmt.Errorf("%w: %q", worker.ErrInvalidDocumentKind, kind)
	}
	w, err := s.load(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return worker.ReadStoredDocument(ctx, s.Store, w, kind)
}
