package models

// ReminderPayload is the asynq task payload for a scheduled dues
// reminder push.
type ReminderPayload struct {
	ReminderID string  `json:"reminderId"`
	MemberID   string  `json:"memberId"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Amount     float64 `json:"amount,omitempty"`
	Period     string  `json:"period,omitempty"`
	FireDate   string  `json:"fireDate,omitempty"`
}
