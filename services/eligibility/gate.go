package eligibility

import "sewa/models"

// Action is a worker operation guarded by CheckWorkerPermission.
type Action string

const (
	ActionGoOnline      Action = "go_online"
	ActionAcceptBooking Action = "accept_booking"
	ActionUploadDocs    Action = "upload_docs"
)

const (
	DenialGoOnline      = "You need to be verified before you can go online."
	DenialAcceptBooking = "You need to be verified and online to accept bookings."
	DenialUploadDocs    = "Please log in to upload your documents."
	DenialUnknown       = "This action is not available for your account."
)

// ParseAction maps a raw tag onto a known Action; ok is false for anything else.
func ParseAction(raw string) (Action, bool) {
	switch Action(raw) {
	case ActionGoOnline, ActionAcceptBooking, ActionUploadDocs:
		return Action(raw), true
	}
	return "", false
}

// DenialMessage is the fixed text shown when action is refused.
func DenialMessage(action Action) string {
	switch action {
	case ActionGoOnline:
		return DenialGoOnline
	case ActionAcceptBooking:
		return DenialAcceptBooking
	case ActionUploadDocs:
		return DenialUploadDocs
	default:
		return DenialUnknown
	}
}

// Allowed evaluates action without side effects. Unknown actions are refused.
func Allowed(w *models.Worker, action Action) bool {
	switch action {
	case ActionGoOnline:
		return CanGoOnline(w)
	case ActionAcceptBooking:
		return CanAcceptBookings(w)
	case ActionUploadDocs:
		return w != nil
	default:
		return false
	}
}

// CheckWorkerPermission evaluates action for w. On denial notify is called exactly once
// with the action's denial message; on approval it is not called. notify may be nil.
func CheckWorkerPermission(w *models.Worker, action Action, notify func(message string)) bool {
	if Allowed(w, action) {
		return true
	}
	if notify != nil {
		notify(DenialMessage(action))
	}
	return false
}
