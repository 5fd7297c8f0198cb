package workerRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sewa/models"
)

// MemoryWorkerRepo is an in-process WorkerRepository used by tests and local runs
// without MongoDB. Stored records are copied on the way in and out.
type MemoryWorkerRepo struct {
	mu      sync.RWMutex
	workers map[string]*models.Worker
}

func NewMemoryWorkerRepo(seed ...*models.Worker) *MemoryWorkerRepo {
	r := &MemoryWorkerRepo{workers: make(map[string]*models.Worker)}
	for _, w := range seed {
		r.workers[w.ID] = cloneWorker(w)
	}
	return r
}

func cloneWorker(w *models.Worker) *models.Worker {
	c := *w
	c.ServiceCategories = append([]string(nil), w.ServiceCategories...)
	if w.CategoryVerificationStatus != nil {
		c.CategoryVerificationStatus = make(map[string]models.VerificationStatus, len(w.CategoryVerificationStatus))
		for k, v := range w.CategoryVerificationStatus {
			c.CategoryVerificationStatus[k] = v
		}
	}
	if w.Documents != nil {
		c.Documents = make(map[models.DocumentKind]string, len(w.Documents))
		for k, v := range w.Documents {
			c.Documents[k] = v
		}
	}
	return &c
}

func (r *MemoryWorkerRepo) GetByID(_ context.Context, id string) (*models.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[id]
	if !ok {
		return nil, fmt.Errorf("failed to fetch worker with id %s: %w", id, ErrWorkerNotFound)
	}
	return cloneWorker(w), nil
}

func (r *MemoryWorkerRepo) GetByEmail(_ context.Context, email string) (*models.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.workers {
		if w.Email == email {
			return cloneWorker(w), nil
		}
	}
	return nil, fmt.Errorf("failed to fetch worker with email %s: %w", email, ErrWorkerNotFound)
}

func (r *MemoryWorkerRepo) Create(_ context.Context, worker *models.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workers[worker.ID]; exists {
		return fmt.Errorf("failed to create worker: duplicate id %s", worker.ID)
	}
	for _, w := range r.workers {
		if w.Email == worker.Email {
			return fmt.Errorf("failed to create worker with email %s: %w", worker.Email, ErrEmailTaken)
		}
	}
	r.workers[worker.ID] = cloneWorker(worker)
	return nil
}

func (r *MemoryWorkerRepo) List(_ context.Context, filter models.WorkerFilter) ([]models.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Worker
	for _, w := range r.workers {
		if filter.Status != nil && w.VerificationStatus != *filter.Status {
			continue
		}
		if filter.IsActive != nil && w.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *cloneWorker(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryWorkerRepo) update(id string, fn func(w *models.Worker)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return fmt.Errorf("worker with id %s: %w", id, ErrWorkerNotFound)
	}
	fn(w)
	w.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryWorkerRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(w *models.Worker) { w.IsActive = active })
}

func (r *MemoryWorkerRepo) SetDocument(_ context.Context, id string, kind models.DocumentKind, ref string) error {
	return r.update(id, func(w *models.Worker) {
		if w.Documents == nil {
			w.Documents = map[models.DocumentKind]string{}
		}
		w.Documents[kind] = ref
	})
}

func (r *MemoryWorkerRepo) SetOverallStatus(_ context.Context, id string, status models.VerificationStatus, note string) error {
	return r.update(id, func(w *models.Worker) {
		w.VerificationStatus = status
		w.ReviewNote = note
	})
}

func (r *MemoryWorkerRepo) SetCategoryStatus(_ context.Context, id, category string, status models.VerificationStatus) error {
	return r.update(id, func(w *models.Worker) {
		if w.CategoryVerificationStatus == nil {
			w.CategoryVerificationStatus = map[string]models.VerificationStatus{}
		}
		w.CategoryVerificationStatus[category] = status
	})
}

func (r *MemoryWorkerRepo) SetServiceCategories(_ context.Context, id string, categories []string) error {
	return r.update(id, func(w *models.Worker) { w.ServiceCategories = append([]string(nil), categories...) })
}

func (r *MemoryWorkerRepo) SetFCMToken(_ context.Context, id, token string) error {
	return r.update(id, func(w *models.Worker) { w.FCMToken = token })
}

func (r *MemoryWorkerRepo) SetTokenHash(_ context.Context, id, tokenHash string) error {
	return r.update(id, func(w *models.Worker) { w.TokenHash = tokenHash })
}

func (r *MemoryWorkerRepo) SetAppLock(_ context.Context, id string, lock models.AppLock) error {
	return r.update(id, func(w *models.Worker) { w.AppLock = lock })
}

var _ WorkerRepository = (*MemoryWorkerRepo)(nil)

func (r *MemoryWorkerRepo) RecordFailedPIN(_ context.Context, id string, maxAttempts int, cooldown time.Duration, now time.Time) (*models.AppLock, error) {
	var lock models.AppLock
	err := r.update(id, func(w *models.Worker) {
		if !now.Before(w.AppLock.LockedUntil) {
			w.AppLock.FailedAttempts++
			if w.AppLock.FailedAttempts >= maxAttempts {
				w.AppLock.FailedAttempts = 0
				w.AppLock.LockedUntil = now.Add(cooldown)
			}
		}
		w.AppLock.UpdatedAt = now
		lock = w.AppLock
	})
	if err != nil {
		return nil, err
	}
	return &lock, nil
}
