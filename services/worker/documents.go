package worker

import (
	"context"
	"fmt"
	"path"

	"sewa/models"
	"sewa/services/eligibility"
	"sewa/services/storage"

	"go.uber.org/zap"
)

// UploadDocument stores a verification document and records its reference. When the
// upload completes the required set for a worker who is neither verified nor already
// under review, the worker is moved to pending.
func (s *DefaultWorkerService) UploadDocument(ctx context.Context, id string, kind models.DocumentKind, localFilePath string) (*models.Worker, error) {
	if !models.IsKnownDocumentKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentKind, kind)
	}
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, w, eligibility.ActionUploadDocs); err != nil {
		return nil, err
	}

	ref, err := s.Store.UploadDocument(ctx, localFilePath, path.Join("workers", id, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", kind, err)
	}
	if err := s.Repo.SetDocument(ctx, id, kind, ref); err != nil {
		if delErr := s.Store.DeleteFile(ctx, ref); delErr != nil {
			s.Logger.Warn("failed to delete unrecorded document",
				zap.String("workerID", id),
				zap.String("ref", ref),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to record %s: %w", kind, err)
	}
	defer s.Cache.Invalidate(ctx, id)

	previous := w.Documents[kind]
	if previous != "" && previous != ref {
		if err := s.Store.DeleteFile(ctx, previous); err != nil {
			s.Logger.Warn("failed to delete replaced document",
				zap.String("workerID", id),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}

	if w.Documents == nil {
		w.Documents = map[models.DocumentKind]string{}
	}
	w.Documents[kind] = ref

	status := eligibility.OverallStatus(w)
	if !eligibility.NeedsDocumentUpload(w) && status != models.StatusVerified && status != models.StatusPending {
		if err := s.Repo.SetOverallStatus(ctx, id, models.StatusPending, ""); err != nil {
			return nil, fmt.Errorf("failed to submit for review: %w", err)
		}
		w.VerificationStatus = models.StatusPending
		w.ReviewNote = ""
		s.Logger.Info("worker submitted for review", zap.String("workerID", id))
	}

	return w, nil
}

// ReadDocument returns the decrypted bytes of one of the worker's documents.
func (s *DefaultWorkerService) ReadDocument(ctx context.Context, id string, kind models.DocumentKind) ([]byte, error) {
	if !models.IsKnownDocumentKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentKind, kind)
	}
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ReadStoredDocument(ctx, s.Store, w, kind)
}

// ReadStoredDocument fetches the document of the given kind recorded on w.
func ReadStoredDocument(ctx context.Context, store storage.DocumentStore, w *models.Worker, kind models.DocumentKind) ([]byte, error) {
	ref := w.Documents[kind]
	if ref == "" {
		return nil, ErrDocumentNotFound
	}
	data, err := store.ReadDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	return data, nil
}
