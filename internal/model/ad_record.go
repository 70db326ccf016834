// internal/model/ad_record.go
package model

import "time"

// Status of an ad record within its lifecycle.
type Status string

const (
	StatusEnquiry   Status = "enquiry"
	StatusHold      Status = "hold"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// validTransitions is the closed set of allowed status moves.
// hold is reversible and self-expiring; completion and hold release
// also happen automatically via the status engine.
var validTransitions = map[Status][]Status{
	StatusEnquiry: {StatusHold, StatusPending},
	StatusHold:    {StatusEnquiry},
	StatusPending: {StatusActive},
	StatusActive:  {StatusCompleted},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Tier is a fixed amount/duration pair.
type Tier struct {
	Amount int
	Days   int
}

// Tiers is the fixed amount-to-duration table.
var Tiers = []Tier{
	{Amount: 1000, Days: 5},
	{Amount: 2000, Days: 10},
	{Amount: 4000, Days: 20},
	{Amount: 6000, Days: 30},
}

// TierDays looks up the fixed-tier duration for an amount.
func TierDays(amount int) (int, bool) {
	for _, t := range Tiers {
		if t.Amount == amount {
			return t.Days, true
		}
	}
	return 0, false
}

// IsFixedTier reports whether an amount is one of the fixed tiers.
func IsFixedTier(amount int) bool {
	_, ok := TierDays(amount)
	return ok
}

type AdRecord struct {
	ID           int        `db:"id" json:"id"`
	UserID       *int       `db:"user_id" json:"user_id,omitempty"` // nulled when the owner is removed
	AdName       string     `db:"ad_name" json:"ad_name"`
	BusinessName string     `db:"business_name" json:"business_name"`
	MobileNumber string     `db:"mobile_number" json:"mobile_number"`
	Notes        string     `db:"notes" json:"notes"`
	EntryDate    time.Time  `db:"entry_date" json:"entry_date"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	Amount       *int       `db:"amount" json:"amount,omitempty"`
	CustomAmount *int       `db:"custom_amount" json:"custom_amount,omitempty"`
	CustomDays   *int       `db:"custom_days" json:"custom_days,omitempty"`
	UPILastFour  string     `db:"upi_last_four" json:"upi_last_four,omitempty"`
	AdminUPIID   string     `db:"admin_upi_id" json:"admin_upi_id,omitempty"`
	Status       Status     `db:"status" json:"status"`
	HoldReason   string     `db:"hold_reason" json:"hold_reason,omitempty"`
	HoldUntil    *time.Time `db:"hold_until" json:"hold_until,omitempty"`
	RenewedFrom  *int       `db:"renewed_from" json:"renewed_from,omitempty"`
}

// DurationDays resolves the campaign duration for this record: fixed-tier
// lookup when the amount is in the table, custom_days for custom tiers,
// 0 when no duration can be derived.
func (r *AdRecord) DurationDays() int {
	if r.Amount == nil {
		return 0
	}
	if days, ok := TierDays(*r.Amount); ok {
		return days
	}
	if r.CustomDays != nil && *r.CustomDays > 0 {
		return *r.CustomDays
	}
	return 0
}
