package admin

import (
	"context"
	"fmt"

	"sewa/models"
	"sewa/services/eligibility"
)

// ListWorkers returns matching workers with their eligibility evaluated.
func (s *DefaultAdminService) ListWorkers(ctx context.Context, filter models.WorkerFilter) ([]WorkerSummary, error) {
	workers, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	out := make([]WorkerSummary, 0, len(workers))
	for i := range workers {
		out = append(out, WorkerSummary{
			Worker:      workers[i],
			Eligibility: eligibility.Evaluate(&workers[i]),
		})
	}
	return out, nil
}

// DashboardStats counts workers by status using the same predicates the app uses.
// Records without a recognised status are counted under "unknown".
func (s *DefaultAdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	workers, err := s.Repo.List(ctx, models.WorkerFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	stats := &models.DashboardStats{
		Total:       len(workers),
		ByStatus:    map[string]int{},
		GeneratedAt: s.now(),
	}
	for i := range workers {
		w := &workers[i]
		key := string(eligibility.OverallStatus(w))
		if key == "" {
			key = "unknown"
		}
		stats.ByStatus[key]++
		if w.IsActive {
			stats.Active++
		}
		if eligibility.IsFullyVerified(w) {
			stats.FullyVerified++
		}
		if eligibility.NeedsDocumentUpload(w) {
			stats.AwaitingDocs++
		}
	}
	return stats, nil
}
