// internal/model/follow_up.go
package model

import "time"

// FollowUpKind distinguishes the two reminders tied to an enquiry.
type FollowUpKind string

const (
	FollowUpDay1 FollowUpKind = "day1"
	FollowUpDay2 FollowUpKind = "day2"
)

// DayOffset is the number of days after enquiry creation the reminder targets.
func (k FollowUpKind) DayOffset() int {
	if k == FollowUpDay2 {
		return 2
	}
	return 1
}

type FollowUp struct {
	ID            int          `db:"id" json:"id"`
	AdRecordID    int          `db:"ad_record_id" json:"ad_record_id"`
	Kind          FollowUpKind `db:"kind" json:"kind"`
	FollowUpDate  time.Time    `db:"follow_up_date" json:"follow_up_date"`
	Notes         string       `db:"notes" json:"notes"`
	Contacted     bool         `db:"contacted" json:"contacted"`
	ContactMethod string       `db:"contact_method" json:"contact_method,omitempty"`
	Response      string       `db:"response" json:"response,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}
