package dues

import (
	"strconv"
	"strings"
	"time"

	"flatmate/models"
)

// PeriodOf formats a point in time as a billing period ("YYYY-MM").
func PeriodOf(now time.Time) string {
	return now.Format("2006-01")
}

// paymentTime derives the chronological timestamp of a ledger record.
// CreatedAt (epoch milliseconds) wins; the display date string is a
// fallback parsed in day/month/year order. The boolean is false when
// neither yields a usable time, in which case the record must be
// excluded from cycle-paid consideration.
func paymentTime(p models.PaymentRecord, loc *time.Location) (time.Time, bool) {
	if p.CreatedAt > 0 {
		return time.UnixMilli(p.CreatedAt).In(loc), true
	}
	return parseDayMonthYear(p.Date, loc)
}

// parseDayMonthYear parses "DD/MM/YYYY" (en-IN locale output). Dates
// that do not land on a real calendar day, like 31/02/2025, are
// rejected rather than normalized.
func parseDayMonthYear(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// matchesMember reports whether a ledger record belongs to the member.
// Email is the primary key: when both sides carry one, it decides the
// match outright (case-insensitive, trimmed) and a mismatch
// disqualifies regardless of flat. Flat comparison applies only when
// either side lacks an email. A record with neither key matches
// nobody.
func matchesMember(p models.PaymentRecord, member models.MemberAccount) bool {
	pEmail := strings.TrimSpace(p.Email)
	mEmail := strings.TrimSpace(member.Email)
	if pEmail != "" && mEmail != "" {
		return strings.EqualFold(pEmail, mEmail)
	}
	pFlat := strings.TrimSpace(p.Flat)
	mFlat := strings.TrimSpace(member.FlatNumber)
	if pFlat != "" && mFlat != "" {
		return pFlat == mFlat
	}
	return false
}

// dueDay extracts the configured monthly due day. DueDateISO
// ("YYYY-MM-DD") is preferred; the legacy bare day-of-month string is
// the fallback. Returns 0 when no valid day in [1,31] exists.
func dueDay(cfg *models.BillingConfig) int {
	if cfg == nil {
		return 0
	}
	if cfg.DueDateISO != "" {
		if t, err := time.Parse("2006-01-02", cfg.DueDateISO); err == nil {
			return t.Day()
		}
	}
	if d, err := strconv.Atoi(strings.TrimSpace(cfg.DueDate)); err == nil && d >= 1 && d <= 31 {
		return d
	}
	return 0
}

// NextDueDate returns the upcoming due date: this month's due day if
// it has not passed yet, otherwise next month's. The day is clamped to
// the length of the target month. ok is false when the config carries
// no valid due day.
func NextDueDate(cfg *models.BillingConfig, now time.Time) (time.Time, bool) {
	day := dueDay(cfg)
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	d := day
	if last := lastDayOfMonth(target); d > last {
		d = last
	}
	if now.Day() > d {
		target = target.AddDate(0, 1, 0)
		d = day
		if last := lastDayOfMonth(target); d > last {
			d = last
		}
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, now.Location()), true
}

// lastDayOfMonth returns the number of days in now's month.
func lastDayOfMonth(now time.Time) int {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
