package admin

import (
	"context"
	"fmt"
	"strings"

	"sewa/models"
	"sewa/services/eligibility"
	"sewa/services/tasks"

	"go.uber.org/zap"
)

// ReviewWorker sets the overall verification status. Approval requires the full
// document set; any other status takes the worker offline.
func (s *DefaultAdminService) ReviewWorker(ctx context.Context, workerID string, status models.VerificationStatus, note string) (*models.Worker, error) {
	if !status.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	w, err := s.load(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if status == models.StatusVerified && eligibility.NeedsDocumentUpload(w) {
		return nil, fmt.Errorf("%w: %v", ErrDocumentsIncomplete, eligibility.MissingDocuments(w))
	}

	note = strings.TrimSpace(note)
	if err := s.Repo.SetOverallStatus(ctx, workerID, status, note); err != nil {
		return nil, fmt.Errorf("failed to update verification status: %w", err)
	}
	defer s.Cache.Invalidate(ctx, workerID)
	w.VerificationStatus = status
	w.ReviewNote = note

	if status != models.StatusVerified && w.IsActive {
		if err := s.Repo.SetActive(ctx, workerID, false); err != nil {
			return nil, fmt.Errorf("failed to take worker offline: %w", err)
		}
		w.IsActive = false
	}

	s.Logger.Info("worker reviewed",
		zap.String("workerID", workerID),
		zap.String("status", string(status)),
	)
	s.enqueueNotice(ctx, overallNotice(w))
	return w, nil
}

// ReviewCategory sets the verification status of one declared service category.
func (s *DefaultAdminService) ReviewCategory(ctx context.Context, workerID, category string, status models.VerificationStatus) (*models.Worker, error) {
	if !status.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	w, err := s.load(ctx, workerID)
	if err != nil {
		return nil, err
	}
	declared := false
	for _, c := range w.ServiceCategories {
		if c == category {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotDeclared, category)
	}

	if err := s.Repo.SetCategoryStatus(ctx, workerID, category, status); err != nil {
		return nil, fmt.Errorf("failed to update category status: %w", err)
	}
	if w.CategoryVerificationStatus == nil {
		w.CategoryVerificationStatus = map[string]models.VerificationStatus{}
	}
	w.CategoryVerificationStatus[category] = status
	s.Cache.Invalidate(ctx, workerID)

	s.Logger.Info("worker category reviewed",
		zap.String("workerID", workerID),
		zap.String("category", category),
		zap.String("status", string(status)),
	)
	s.enqueueNotice(ctx, categoryNotice(w.ID, category, status))
	return w, nil
}

// enqueueNotice queues a push for the worker. The review itself has already been
// stored, so failures are logged and not returned.
func (s *DefaultAdminService) enqueueNotice(ctx context.Context, notice models.VerificationNoticePayload) {
	if s.Enqueuer == nil {
		return
	}
	task, opts, err := tasks.NewVerificationNoticeTask(notice)
	if err != nil {
		s.Logger.Error("failed to build verification notice", zap.String("workerID", notice.WorkerID), zap.Error(err))
		return
	}
	if _, err := s.Enqueuer.EnqueueContext(ctx, task, opts...); err != nil {
		s.Logger.Error("failed to enqueue verification notice", zap.String("workerID", notice.WorkerID), zap.Error(err))
	}
}

func overallNotice(w *models.Worker) models.VerificationNoticePayload {
	n := models.VerificationNoticePayload{
		WorkerID: w.ID,
		Kind:     "overall",
		Status:   string(w.VerificationStatus),
	}
	switch w.VerificationStatus {
	case models.StatusVerified:
		n.Title = "You're verified 🎉"
		n.Body = eligibility.MessageVerified
	case models.StatusRejected:
		n.Title = "Verification rejected"
		n.Body = eligibility.MessageRejected
		if w.ReviewNote != "" {
			n.Body += " Reason: " + w.ReviewNote
		}
	default:
		n.Title = "Verification under review"
		n.Body = eligibility.MessageUnderReview
	}
	return n
}

func categoryNotice(workerID, category string, status models.VerificationStatus) models.VerificationNoticePayload {
	n := models.VerificationNoticePayload{
		WorkerID: workerID,
		Kind:     "category",
		Category: category,
		Status:   string(status),
	}
	switch status {
	case models.StatusVerified:
		n.Title = fmt.Sprintf("%s approved", category)
		n.Body = fmt.Sprintf("Your %s service is verified. You can now receive %s bookings.", category, category)
	case models.StatusRejected:
		n.Title = fmt.Sprintf("%s not approved", category)
		n.Body = fmt.Sprintf("Your %s service verification was rejected. Contact support for details.", category)
	default:
		n.Title = fmt.Sprintf("%s under review", category)
		n.Body = fmt.Sprintf("We are reviewing your %s service.", category)
	}
	return n
}
