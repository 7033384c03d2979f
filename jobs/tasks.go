package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail is the task type for sending the post-registration email.
	TaskTypeWelcomeEmail = "mail:welcome"
	// TaskTypeViewsFlush is the task type for draining buffered article view
	// counters from Redis into Postgres.
	TaskTypeViewsFlush = "views:flush"
)

// WelcomeEmailPayload describes the information required to greet a new user.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data), nil
}

// NewViewsFlushTask constructs the periodic views-flush task. The payload is
// empty; the handler drains whatever counters have accumulated.
func NewViewsFlushTask() *asynq.Task {
	return asynq.NewTask(TaskTypeViewsFlush, nil)
}

// HandleWelcomeEmailTask processes TaskTypeWelcomeEmail tasks.
func HandleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	fmt.Printf("[jobs] welcome email to %s name=%s\n", payload.To, payload.Name)
	return nil
}
