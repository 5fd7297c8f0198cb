// Package eligibility decides what a worker may do from a snapshot of their record.
// Every function is pure: it reads the snapshot passed in and nothing else, so callers
// may evaluate concurrently without coordination. A nil worker is treated as absent and
// always gets the most restrictive answer.
package eligibility

import "sewa/models"

// OverallStatus returns the worker's canonical overall verification status.
func OverallStatus(w *models.Worker) models.VerificationStatus {
	if w == nil {
		return models.StatusUnknown
	}
	return models.ParseVerificationStatus(string(w.VerificationStatus))
}

// IsVerified reports whether the overall status is verified.
func IsVerified(w *models.Worker) bool {
	return OverallStatus(w) == models.StatusVerified
}

// IsUnderReview reports whether the overall status is pending.
func IsUnderReview(w *models.Worker) bool {
	return OverallStatus(w) == models.StatusPending
}

// IsRejected reports whether the overall status is rejected.
func IsRejected(w *models.Worker) bool {
	return OverallStatus(w) == models.StatusRejected
}
