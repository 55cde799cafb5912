package models

// BillingConfig is the single society-wide billing configuration,
// stored under config/maintenance. DueDateISO carries the full picked
// date; DueDate keeps the bare day-of-month for older consumers.
type BillingConfig struct {
	MaintenanceCharge float64 `json:"maintenanceCharge"`
	WaterCharge       float64 `json:"waterCharge"`
	SinkingFund       float64 `json:"sinkingFund"`
	DueDateISO        string  `json:"dueDateISO,omitempty"` // "YYYY-MM-DD"
	DueDate           string  `json:"dueDate,omitempty"`    // legacy day-of-month, e.g. "25"
	LateFee           float64 `json:"lateFee"`
	ContactEmail      string  `json:"contactEmail,omitempty"`
}

// RecurringCharge is the authoritative monthly charge for a member who
// has not paid the current cycle. The persisted per-member dues field
// never overrides this for cycle-status purposes.
func (c *BillingConfig) RecurringCharge() float64 {
	if c == nil {
		return 0
	}
	return c.MaintenanceCharge + c.WaterCharge + c.SinkingFund
}
