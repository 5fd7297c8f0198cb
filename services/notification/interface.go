package notification

import (
	"context"
	"errors"
	"fmt"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoPushTarget is returned when the worker has not registered a device token.
var ErrNoPushTarget = errors.New("worker has no FCM token")

// NotificationService defines methods for sending FCM pushes to workers.
type NotificationService interface {
	SendWorkerPushNotification(ctx context.Context, workerID, title, body string, data map[string]string) error
	NotifyVerificationChange(ctx context.Context, notice models.VerificationNoticePayload) error
}

// Sender is the subset of *messaging.Client the service needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo   workerRepo.WorkerRepository
	sender Sender
	logger *zap.Logger
}

func NewDefaultNotificationService(
	repo workerRepo.WorkerRepository,
	sender Sender,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil || sender == nil || logger == nil {
		return nil, fmt.Errorf("notification service initialization error: repo, sender or logger is nil")
	}
	return &DefaultNotificationService{
		repo:   repo,
		sender: sender,
		logger: logger,
	}, nil
}

// SendWorkerPushNotification looks up the worker's FCM token and sends a push.
func (s *DefaultNotificationService) SendWorkerPushNotification(
	ctx context.Context,
	workerID, title, body string,
	data map[string]string,
) error {
	w, err := s.repo.GetByID(ctx, workerID)
	if err != nil {
		return fmt.Errorf("SendWorkerPushNotification: could not find worker %s: %w", workerID, err)
	}
	if w.FCMToken == "" {
		return fmt.Errorf("SendWorkerPushNotification: worker %s: %w", workerID, ErrNoPushTarget)
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["role"]; !ok {
		payload["role"] = "worker"
	}

	msg := &messaging.Message{
		Token: w.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendWorkerPushNotification: failed to send FCM message: %w", err)
	}
	s.logger.Debug("push sent", zap.String("workerID", workerID), zap.String("messageID", id))
	return nil
}

// NotifyVerificationChange delivers a queued verification notice. Workers without a
// device token are skipped silently.
func (s *DefaultNotificationService) NotifyVerificationChange(ctx context.Context, notice models.VerificationNoticePayload) error {
	data := map[string]string{
		"type":   "verification_update",
		"kind":   notice.Kind,
		"status": notice.Status,
	}
	if notice.Category != "" {
		data["category"] = notice.Category
	}
	for k, v := range notice.Data {
		data[k] = v
	}

	err := s.SendWorkerPushNotification(ctx, notice.WorkerID, notice.Title, notice.Body, data)
	if errors.Is(err, ErrNoPushTarget) {
		s.logger.Info("verification notice skipped, no device token", zap.String("workerID", notice.WorkerID))
		return nil
	}
	return err
}
