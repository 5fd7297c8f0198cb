package eligibility

import "sewa/models"

// RequiredDocuments must all be uploaded before a worker counts as document-complete.
// Driving licences are collected for delivery categories but are not part of this set.
var RequiredDocuments = []models.DocumentKind{
	models.DocumentProfilePhoto,
	models.DocumentCertificate,
	models.DocumentCitizenship,
}

// MissingDocuments returns the required kinds with no uploaded reference, in
// RequiredDocuments order.
func MissingDocuments(w *models.Worker) []models.DocumentKind {
	if w == nil {
		return append([]models.DocumentKind(nil), RequiredDocuments...)
	}
	var missing []models.DocumentKind
	for _, kind := range RequiredDocuments {
		if w.Documents[kind] == "" {
			missing = append(missing, kind)
		}
	}
	return missing
}

// NeedsDocumentUpload reports whether any required document is missing.
func NeedsDocumentUpload(w *models.Worker) bool {
	return len(MissingDocuments(w)) > 0
}
