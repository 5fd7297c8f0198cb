package eligibility

import "sewa/models"

const (
	MessageLogin           = "Please log in to continue."
	MessageUploadDocuments = "Please upload your profile photo, certificate and citizenship documents to get verified."
	MessageUnderReview     = "Your documents are under review. We will notify you once verification is complete."
	MessageRejected        = "Your verification was rejected. Please re-upload your documents or contact support."
	MessageVerified        = "You are verified. You can go online and accept bookings."
	MessageCompleteProfile = "Please complete your profile to get verified."
)

// CanGoOnline reports whether the worker may switch to available.
func CanGoOnline(w *models.Worker) bool {
	return IsVerified(w)
}

// CanAcceptBookings requires a verified worker that is currently online.
func CanAcceptBookings(w *models.Worker) bool {
	return IsVerified(w) && w.IsActive
}

// IsFullyVerified requires both account verification and at least one verified category.
func IsFullyVerified(w *models.Worker) bool {
	return IsVerified(w) && HasVerifiedService(w)
}

// VerificationMessage picks the status banner text. Order matters: the first matching
// condition wins, so a missing document hides review and rejection states.
func VerificationMessage(w *models.Worker) string {
	switch {
	case w == nil:
		return MessageLogin
	case NeedsDocumentUpload(w):
		return MessageUploadDocuments
	case IsUnderReview(w):
		return MessageUnderReview
	case IsRejected(w):
		return MessageRejected
	case IsVerified(w):
		return MessageVerified
	default:
		return MessageCompleteProfile
	}
}

// Report is every predicate evaluated against one snapshot.
type Report struct {
	WorkerID            string                    `json:"workerId,omitempty"`
	Status              models.VerificationStatus `json:"status"`
	IsVerified          bool                      `json:"isVerified"`
	CanGoOnline         bool                      `json:"canGoOnline"`
	CanAcceptBookings   bool                      `json:"canAcceptBookings"`
	HasVerifiedService  bool                      `json:"hasVerifiedService"`
	IsFullyVerified     bool                      `json:"isFullyVerified"`
	NeedsDocumentUpload bool                      `json:"needsDocumentUpload"`
	IsUnderReview       bool                      `json:"isUnderReview"`
	IsRejected          bool                      `json:"isRejected"`
	MissingDocuments    []models.DocumentKind     `json:"missingDocuments"`
	VerifiedCategories  []string                  `json:"verifiedCategories"`
	Message             string                    `json:"message"`
}

// Evaluate runs every predicate against w.
func Evaluate(w *models.Worker) Report {
	r := Report{
		Status:              OverallStatus(w),
		IsVerified:          IsVerified(w),
		CanGoOnline:         CanGoOnline(w),
		CanAcceptBookings:   CanAcceptBookings(w),
		HasVerifiedService:  HasVerifiedService(w),
		IsFullyVerified:     IsFullyVerified(w),
		NeedsDocumentUpload: NeedsDocumentUpload(w),
		IsUnderReview:       IsUnderReview(w),
		IsRejected:          IsRejected(w),
		MissingDocuments:    MissingDocuments(w),
		VerifiedCategories:  VerifiedCategories(w),
		Message:             VerificationMessage(w),
	}
	if w != nil {
		r.WorkerID = w.ID
	}
	if r.MissingDocuments == nil {
		r.MissingDocuments = []models.DocumentKind{}
	}
	if r.VerifiedCategories == nil {
		r.VerifiedCategories = []string{}
	}
	return r
}
