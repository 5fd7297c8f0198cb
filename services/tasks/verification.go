package tasks

import (
	"encoding/json"

	"sewa/models"

	"github.com/hibiken/asynq"
)

const TypeVerificationNotice = "verification:notify"

func NewVerificationNoticeTask(payload models.VerificationNoticePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeVerificationNotice, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}

	return task, opts, nil
}

// ParseVerificationNotice decodes the payload written by NewVerificationNoticeTask.
func ParseVerificationNotice(task *asynq.Task) (models.VerificationNoticePayload, error) {
	var payload models.VerificationNoticePayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
