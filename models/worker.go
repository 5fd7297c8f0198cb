package models

import "time"

// DocumentKind names an uploadable verification document.
type DocumentKind string

const (
	DocumentProfilePhoto   DocumentKind = "profilePhoto"
	DocumentCertificate    DocumentKind = "certificate"
	DocumentCitizenship    DocumentKind = "citizenship"
	DocumentDrivingLicense DocumentKind = "drivingLicense" // delivery and driver categories
)

// KnownDocumentKinds lists every kind the upload endpoint accepts.
var KnownDocumentKinds = []DocumentKind{
	DocumentProfilePhoto,
	DocumentCertificate,
	DocumentCitizenship,
	DocumentDrivingLicense,
}

// IsKnownDocumentKind reports whether kind can be uploaded.
func IsKnownDocumentKind(kind DocumentKind) bool {
	for _, k := range KnownDocumentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AppLock holds the worker's app-lock PIN state.
type AppLock struct {
	PINHash        string    `bson:"pinHash" json:"-"`
	FailedAttempts int       `bson:"failedAttempts" json:"failedAttempts"`
	LockedUntil    time.Time `bson:"lockedUntil,omitempty" json:"lockedUntil,omitzero"`
	UpdatedAt      time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitzero"`
}

// Enabled reports whether a PIN has been set.
func (a AppLock) Enabled() bool {
	return a.PINHash != ""
}

// Worker is a service-provider account as stored in the workers collection.
type Worker struct {
	ID                         string                        `bson:"id" json:"id"`
	Name                       string                        `bson:"name" json:"name,omitempty"`
	Email                      string                        `bson:"email" json:"email,omitempty"`
	Phone                      string                        `bson:"phone" json:"phone,omitempty"`
	VerificationStatus         VerificationStatus            `bson:"verificationStatus" json:"verificationStatus"`
	IsActive                   bool                          `bson:"isActive" json:"isActive"`
	ServiceCategories          []string                      `bson:"serviceCategories" json:"serviceCategories"`
	CategoryVerificationStatus map[string]VerificationStatus `bson:"categoryVerificationStatus" json:"categoryVerificationStatus"`
	Documents                  map[DocumentKind]string       `bson:"documents" json:"documents"`
	ReviewNote                 string                        `bson:"reviewNote,omitempty" json:"reviewNote,omitempty"`
	FCMToken                   string                        `bson:"fcmToken,omitempty" json:"-"`
	TokenHash                  string                        `bson:"tokenHash,omitempty" json:"-"`
	AppLock                    AppLock                       `bson:"appLock" json:"appLock"`
	CreatedAt                  time.Time                     `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt                  time.Time                     `bson:"updatedAt" json:"updatedAt,omitzero"`
}
