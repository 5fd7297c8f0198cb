package models

import "time"

// WorkerRegistrationData is the payload for creating a worker account.
type WorkerRegistrationData struct {
	Name              string   `json:"name" binding:"required"`
	Email             string   `json:"email" binding:"required,email"`
	Phone             string   `json:"phone" binding:"required"`
	ServiceCategories []string `json:"serviceCategories"`
}

// WorkerAuthResponse is returned after registration.
type WorkerAuthResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Worker    *Worker   `json:"worker"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkerFilter narrows admin listings.
type WorkerFilter struct {
	Status   *VerificationStatus
	IsActive *bool
	Limit    int64
}

// DashboardStats summarises the worker population for the admin dashboard.
type DashboardStats struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	Active        int            `json:"active"`
	FullyVerified int            `json:"fullyVerified"`
	AwaitingDocs  int            `json:"awaitingDocuments"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}
