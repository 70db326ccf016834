// internal/service/lifecycle.go
package service

import (
	"time"

	"github.com/adsofthq/adtrack-backend/internal/model"
)

// dateOnly strips the clock so date comparisons work on calendar days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ApplyLifecycle recomputes the derived fields of an ad record and runs its
// automatic date-driven transitions:
//
//   - end_date = start_date + duration whenever both a start date and a
//     resolvable duration (fixed tier or custom days) are present
//   - active -> completed once end_date has passed
//   - hold -> enquiry once hold_until has passed
//
// It mutates the record in place and reports whether anything changed.
// Persistence is the caller's job; callers releasing a hold must also clear
// hold_reason/hold_until so a non-hold record never carries stale hold fields.
// The function is idempotent: applying twice with the same today is a no-op
// the second time.
func ApplyLifecycle(r *model.AdRecord, today time.Time) bool {
	changed := false
	today = dateOnly(today)

	if days := r.DurationDays(); days > 0 && r.StartDate != nil {
		end := dateOnly(r.StartDate.AddDate(0, 0, days))
		if r.EndDate == nil || !r.EndDate.Equal(end) {
			r.EndDate = &end
			changed = true
		}
	}

	if r.Status == model.StatusActive && r.EndDate != nil && dateOnly(*r.EndDate).Before(today) {
		r.Status = model.StatusCompleted
		changed = true
	}

	if r.Status == model.StatusHold && r.HoldUntil != nil && dateOnly(*r.HoldUntil).Before(today) {
		r.Status = model.StatusEnquiry
		changed = true
	}

	return changed
}
