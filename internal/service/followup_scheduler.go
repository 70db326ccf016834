// internal/service/followup_scheduler.go
package service

import (
	"fmt"
	"time"

	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/repository"
)

// FollowUpScheduler creates and maintains the day-1/day-2 contact reminders
// attached to enquiries.
type FollowUpScheduler struct {
	FollowUpRepo repository.FollowUpRepositoryInterface
	AdRecordRepo repository.AdRecordRepositoryInterface
}

// OnEnquiryCreated schedules both reminders for a fresh enquiry: day-1 at
// entry+1, day-2 at entry+2, contact fields empty. Safe to call again for
// the same record; existing reminders are left untouched.
func (s *FollowUpScheduler) OnEnquiryCreated(rec *model.AdRecord) (*model.FollowUp, *model.FollowUp, error) {
	entry := dateOnly(rec.EntryDate)

	day1, _, err := s.FollowUpRepo.GetOrCreate(rec.ID, model.FollowUpDay1, entry.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, fmt.Errorf("schedule day-1 follow-up: %w", err)
	}
	day2, _, err := s.FollowUpRepo.GetOrCreate(rec.ID, model.FollowUpDay2, entry.AddDate(0, 0, 2))
	if err != nil {
		return day1, nil, fmt.Errorf("schedule day-2 follow-up: %w", err)
	}
	return day1, day2, nil
}

// Sweep is the catch-up pass for enquiries that aged past the reminder
// offsets without one (bulk imports, missed creation hooks). Enquiries
// entered exactly asOf-1 get a day-1 reminder dated asOf; those entered
// asOf-2 get a day-2 reminder dated asOf. Re-running is a no-op.
func (s *FollowUpScheduler) Sweep(asOf time.Time) (int, error) {
	asOf = dateOnly(asOf)
	created := 0

	for _, kind := range []model.FollowUpKind{model.FollowUpDay1, model.FollowUpDay2} {
		entered := asOf.AddDate(0, 0, -kind.DayOffset())
		records, err := s.AdRecordRepo.ListEnquiriesEnteredOn(entered)
		if err != nil {
			return created, err
		}
		for _, rec := range records {
			_, createdNow, err := s.FollowUpRepo.GetOrCreate(rec.ID, kind, asOf)
			if err != nil {
				return created, err
			}
			if createdNow {
				created++
			}
		}
	}
	return created, nil
}

// RecordContact stores the outcome of a contact attempt. It touches only the
// reminder; the owning ad record's status is unaffected.
func (s *FollowUpScheduler) RecordContact(id int, kind model.FollowUpKind, contacted bool, method, response, notes string) (*model.FollowUp, error) {
	f, err := s.FollowUpRepo.GetByIDAndKind(id, kind)
	if err != nil {
		return nil, err
	}

	f.Contacted = contacted
	f.ContactMethod = method
	f.Response = response
	f.Notes = notes

	if err := s.FollowUpRepo.Update(f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListDue returns the reminders of one kind due on a date, optionally
// scoped to a user's records.
func (s *FollowUpScheduler) ListDue(date time.Time, kind model.FollowUpKind, userID *int) ([]*model.FollowUp, error) {
	return s.FollowUpRepo.ListDueOn(dateOnly(date), kind, userID)
}
