package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flatmate/config"
	"flatmate/models"
	"flatmate/services/dues"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds a dues-reminder task scheduled for fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// NewAsynqClient creates a task queue client on the reminder queue DB.
func NewAsynqClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
}

// EnqueueDuesReminders schedules a reminder for every member that
// still owes for the current cycle and has a push token. Returns how
// many reminders were enqueued. A zero fireAt means immediately.
func EnqueueDuesReminders(client *asynq.Client, cfg *models.BillingConfig, members []models.MemberAccount, history []models.PaymentRecord, now, fireAt time.Time) (int, error) {
	if cfg == nil {
		return 0, dues.ErrNoConfig
	}
	if fireAt.IsZero() {
		fireAt = now
	}
	period := dues.PeriodOf(now)

	enqueued := 0
	for _, m := range members {
		if m.FCMToken == "" {
			continue
		}
		pending := dues.ComputePending(m, cfg, history, now)
		if m.Dues > pending {
			pending = m.Dues
		}
		if pending <= 0 {
			continue
		}

		payload := models.ReminderPayload{
			ReminderID: fmt.Sprintf("dues:%s:%s", period, m.ID),
			MemberID:   m.ID,
			Title:      "Maintenance due",
			Body:       fmt.Sprintf("Rs %.2f is due for %s. Please pay to avoid a late fee.", pending, period),
			Amount:     pending,
			Period:     period,
			FireDate:   fireAt.Format(time.RFC3339),
		}
		task, opts, err := NewReminderTask(payload, fireAt)
		if err != nil {
			return enqueued, err
		}
		// Unique per member per period so repeated admin clicks do not
		// double-send.
		opts = append(opts, asynq.TaskID(payload.ReminderID), asynq.Retention(24*time.Hour))
		if _, err := client.Enqueue(task, opts...); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				continue
			}
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}
