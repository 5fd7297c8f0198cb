package models

// VerificationNoticePayload is the asynq payload for pushing a verification change to a worker.
type VerificationNoticePayload struct {
	WorkerID string            `json:"workerId"`
	Kind     string            `json:"kind"` // "overall" or "category"
	Category string            `json:"category,omitempty"`
	Status   string            `json:"status"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
}
