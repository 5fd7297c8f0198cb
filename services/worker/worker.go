package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"
	"sewa/services/eligibility"
	"sewa/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxServiceCategories = 10

// Register creates a worker account. The overall status stays unknown until the
// required documents are uploaded.
func (s *DefaultWorkerService) Register(ctx context.Context, req models.WorkerRegistrationData) (*models.WorkerAuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, workerRepo.ErrWorkerNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	categories, err := normalizeCategories(req.ServiceCategories)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	token, err := utils.GenerateToken(id, utils.RoleWorker, utils.WorkerTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := s.clock()
	w := &models.Worker{
		ID:                         id,
		Name:                       strings.TrimSpace(req.Name),
		Email:                      email,
		Phone:                      strings.TrimSpace(req.Phone),
		VerificationStatus:         models.StatusUnknown,
		ServiceCategories:          categories,
		CategoryVerificationStatus: map[string]models.VerificationStatus{},
		Documents:                  map[models.DocumentKind]string{},
		TokenHash:                  utils.HashToken(token),
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := s.Repo.Create(ctx, w); err != nil {
		if errors.Is(err, workerRepo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register worker: %w", err)
	}

	s.Logger.Info("worker registered", zap.String("workerID", id))
	return &models.WorkerAuthResponse{ID: id, Token: token, Worker: w, CreatedAt: now}, nil
}

// GetWorker returns the worker snapshot, served from the cache when possible.
// Permission decisions never use it; they load the stored record.
func (s *DefaultWorkerService) GetWorker(ctx context.Context, id string) (*models.Worker, error) {
	w, version, ok := s.Cache.Get(ctx, id)
	if ok {
		return w, nil
	}
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, w, version)
	return w, nil
}

// load reads straight from the repository, bypassing the cache.
func (s *DefaultWorkerService) load(ctx context.Context, id string) (*models.Worker, error) {
	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, workerRepo.ErrWorkerNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	return w, nil
}

func (s *DefaultWorkerService) GetEligibility(ctx context.Context, id string) (eligibility.Report, error) {
	w, err := s.GetWorker(ctx, id)
	if err != nil {
		return eligibility.Report{}, err
	}
	return eligibility.Evaluate(w), nil
}

// gate runs the permission check for a state-changing call. On denial it pushes
// the denial text to the worker and returns a *PermissionDeniedError.
func (s *DefaultWorkerService) gate(ctx context.Context, w *models.Worker, action eligibility.Action) error {
	denied := checkPermission(w, action)
	if denied == nil {
		return nil
	}
	s.pushDenial(ctx, w, action, denied.Message)
	return denied
}

func checkPermission(w *models.Worker, action eligibility.Action) *PermissionDeniedError {
	var denial string
	if eligibility.CheckWorkerPermission(w, action, func(message string) { denial = message }) {
		return nil
	}
	return &PermissionDeniedError{Action: action, Message: denial}
}

func (s *DefaultWorkerService) pushDenial(ctx context.Context, w *models.Worker, action eligibility.Action, message string) {
	if w == nil || s.Push == nil {
		return
	}
	data := map[string]string{"type": "permission_denied", "action": string(action)}
	if err := s.Push.SendWorkerPushNotification(ctx, w.ID, "Action not available", message, data); err != nil {
		s.Logger.Warn("failed to push permission denial",
			zap.String("workerID", w.ID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// CheckPermission evaluates action against the stored record. It is a query, so
// a denial is returned but not pushed.
func (s *DefaultWorkerService) CheckPermission(ctx context.Context, id string, action eligibility.Action) error {
	w, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if denied := checkPermission(w, action); denied != nil {
		return denied
	}
	return nil
}

// SetOnline toggles availability. Going online is gated; going offline never is.
func (s *DefaultWorkerService) SetOnline(ctx context.Context, id string, online bool) (*models.Worker, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if online {
		if err := s.gate(ctx, w, eligibility.ActionGoOnline); err != nil {
			return nil, err
		}
	}
	if w.IsActive == online {
		return w, nil
	}

	if err := s.Repo.SetActive(ctx, id, online); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	s.Cache.Invalidate(ctx, id)
	w.IsActive = online
	s.Logger.Info("worker availability changed", zap.String("workerID", id), zap.Bool("online", online))
	return w, nil
}

// AuthorizeBooking checks that the worker may take a booking right now.
func (s *DefaultWorkerService) AuthorizeBooking(ctx context.Context, id string) error {
	w, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.gate(ctx, w, eligibility.ActionAcceptBooking)
}

// UpdateServiceCategories replaces the declared categories. Per-category statuses are
// kept so re-adding a category restores its verification.
func (s *DefaultWorkerService) UpdateServiceCategories(ctx context.Context, id string, categories []string) (*models.Worker, error) {
	normalized, err := normalizeCategories(categories)
	if err != nil {
		return nil, err
	}
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetServiceCategories(ctx, id, normalized); err != nil {
		return nil, fmt.Errorf("failed to update categories: %w", err)
	}
	s.Cache.Invalidate(ctx, id)
	w.ServiceCategories = normalized
	return w, nil
}

func (s *DefaultWorkerService) UpdateFCMToken(ctx context.Context, id, token string) error {
	if err := s.Repo.SetFCMToken(ctx, id, strings.TrimSpace(token)); err != nil {
		if errors.Is(err, workerRepo.ErrWorkerNotFound) {
			return ErrWorkerNotFound
		}
		return fmt.Errorf("failed to update FCM token: %w", err)
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

// normalizeCategories trims, drops blanks and duplicates, and keeps first-seen order.
// Names are used as document field keys, so dots and a leading '$' are refused.
func normalizeCategories(categories []string) ([]string, error) {
	seen := make(map[string]bool, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		if strings.Contains(c, ".") || strings.HasPrefix(c, "$") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) > maxServiceCategories {
		return nil, fmt.Errorf("%w: at most %d categories", ErrInvalidCategory, maxServiceCategories)
	}
	return out, nil
}

// ValidateCategoryName applies the same rules as registration to a single name.
func ValidateCategoryName(category string) error {
	_, err := normalizeCategories([]string{category})
	if err == nil && strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCategory)
	}
	return err
}
