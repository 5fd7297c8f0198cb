package eligibility

import "sewa/models"

// VerifiedCategories returns the declared categories whose per-category status is
// verified, keeping declaration order. Categories with no status entry are unverified.
func VerifiedCategories(w *models.Worker) []string {
	if w == nil {
		return nil
	}
	var verified []string
	for _, category := range w.ServiceCategories {
		if w.CategoryVerificationStatus[category] == models.StatusVerified {
			verified = append(verified, category)
		}
	}
	return verified
}

// HasVerifiedService reports whether at least one declared category is verified.
func HasVerifiedService(w *models.Worker) bool {
	if w == nil {
		return false
	}
	for _, category := range w.ServiceCategories {
		if w.CategoryVerificationStatus[category] == models.StatusVerified {
			return true
		}
	}
	return false
}
