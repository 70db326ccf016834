// internal/service/ad_service.go
package service

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/nyaruka/phonenumbers"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/events"
	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/repository"
)

// mobileRegion is the default parsing region for contact numbers.
const mobileRegion = "IN"

var upiLastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)

// AdService owns the ad-record workflow: intake, payment, verification,
// hold, renewal and the daily sweep. Every mutation goes through
// ApplyLifecycle before the write so derived fields and a status flip land
// in the same UPDATE.
type AdService struct {
	AdRecordRepo repository.AdRecordRepositoryInterface
	Scheduler    *FollowUpScheduler
	Events       events.Publisher
	Now          func() time.Time // nil means time.Now
}

func (s *AdService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AdService) publish(eventType string, rec *model.AdRecord) {
	if s.Events == nil {
		return
	}
	err := s.Events.PublishAdUpdate(events.AdUpdateEvent{
		Type:   eventType,
		AdID:   rec.ID,
		UserID: rec.UserID,
		Status: string(rec.Status),
	})
	if err != nil {
		// Events are refresh pings, not state; the mutation already committed.
		log.Println("⚠️ failed to publish ad update event:", err)
	}
}

func validateMobile(mobile string) error {
	num, err := phonenumbers.Parse(mobile, mobileRegion)
	if err != nil {
		return appErrors.NewValidation("mobile_number", "cannot be parsed as a phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return appErrors.NewValidation("mobile_number", "not a valid mobile number")
	}
	return nil
}

// ====================== Intake ======================

// CreateEnquiry opens a new enquiry for a user and schedules its two
// follow-up reminders. The scheduler is invoked here, explicitly, rather
// than from a persistence hook.
func (s *AdService) CreateEnquiry(userID int, adName, businessName, mobile, notes string) (*model.AdRecord, error) {
	if adName == "" {
		return nil, appErrors.NewValidation("ad_name", "must not be empty")
	}
	if businessName == "" {
		return nil, appErrors.NewValidation("business_name", "must not be empty")
	}
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}

	rec := &model.AdRecord{
		UserID:       &userID,
		AdName:       adName,
		BusinessName: businessName,
		MobileNumber: mobile,
		Notes:        notes,
		EntryDate:    s.now(),
		Status:       model.StatusEnquiry,
	}
	if err := s.AdRecordRepo.Create(rec); err != nil {
		return nil, err
	}

	if _, _, err := s.Scheduler.OnEnquiryCreated(rec); err != nil {
		// Reminders are recoverable via the daily sweep; the enquiry stands.
		log.Println("⚠️ failed to schedule follow-ups for ad", rec.ID, ":", err)
	}

	s.publish("enquiry_created", rec)
	return rec, nil
}

// EditEnquiry updates the identity fields of a user's own enquiry.
func (s *AdService) EditEnquiry(recordID, userID int, adName, businessName, mobile, notes string) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusEnquiry && rec.Status != model.StatusHold {
		return nil, appErrors.NewPreconditionFailed(
			fmt.Sprintf("ad in status %q cannot be edited", rec.Status))
	}

	if adName != "" {
		rec.AdName = adName
	}
	if businessName != "" {
		rec.BusinessName = businessName
	}
	if mobile != "" {
		if err := validateMobile(mobile); err != nil {
			return nil, err
		}
		rec.MobileNumber = mobile
	}
	rec.Notes = notes

	ApplyLifecycle(rec, s.now())
	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("enquiry_updated", rec)
	return rec, nil
}

// ====================== Payment and activation ======================

// SubmitPayment attaches payment details to an enquiry and moves it to
// pending verification. amount must be a fixed tier; a zero amount selects
// the custom tier and requires positive customAmount and customDays.
func (s *AdService) SubmitPayment(recordID, userID, amount, customAmount, customDays int, upiLastFour string) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusEnquiry {
		return nil, appErrors.NewNotFound("ad record", recordID)
	}

	if !upiLastFourPattern.MatchString(upiLastFour) {
		return nil, appErrors.NewValidation("upi_last_four", "must be exactly 4 digits")
	}

	switch {
	case model.IsFixedTier(amount):
		rec.Amount = &amount
		rec.CustomAmount = nil
		rec.CustomDays = nil
	case amount == 0 && customAmount > 0 && customDays > 0:
		rec.Amount = &customAmount
		rec.CustomAmount = &customAmount
		rec.CustomDays = &customDays
	case amount == 0:
		return nil, appErrors.NewValidation("custom_amount", "custom tier needs a positive amount and duration")
	default:
		return nil, appErrors.NewValidation("amount", fmt.Sprintf("%d is not a known tier", amount))
	}

	rec.UPILastFour = upiLastFour
	rec.Status = model.StatusPending

	ApplyLifecycle(rec, s.now())
	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("payment_submitted", rec)
	return rec, nil
}

// VerifyAndActivate matches the full UPI reference against the stored last
// four digits, records it, and activates the ad from the given start date.
func (s *AdService) VerifyAndActivate(recordID int, fullUPIID string, startDate time.Time) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusPending {
		return nil, appErrors.NewNotFound("ad record", recordID)
	}

	if rec.UPILastFour == "" {
		return nil, appErrors.NewPreconditionFailed("no payment details on record")
	}
	if len(fullUPIID) < 4 || fullUPIID[len(fullUPIID)-4:] != rec.UPILastFour {
		return nil, appErrors.NewPreconditionFailed("last 4 digits do not match the UPI ID on record")
	}
	if startDate.IsZero() {
		return nil, appErrors.NewValidation("start_date", "must be set")
	}

	start := dateOnly(startDate)
	rec.AdminUPIID = fullUPIID
	rec.StartDate = &start
	rec.Status = model.StatusActive

	ApplyLifecycle(rec, s.now())
	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("ad_activated", rec)
	return rec, nil
}

// ====================== Hold ======================

// PlaceHold parks an enquiry until a date, with a reason. Only enquiries
// can be held; hold is reversible and self-expiring.
func (s *AdService) PlaceHold(recordID, userID int, reason string, until time.Time) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusEnquiry {
		return nil, appErrors.NewPreconditionFailed(
			fmt.Sprintf("only enquiries can be put on hold, ad is %q", rec.Status))
	}
	if until.IsZero() {
		return nil, appErrors.NewValidation("hold_until", "must be set")
	}

	holdUntil := dateOnly(until)
	rec.Status = model.StatusHold
	rec.HoldReason = reason
	rec.HoldUntil = &holdUntil

	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("hold_placed", rec)
	return rec, nil
}

// EditHold updates the reason/date of an existing hold.
func (s *AdService) EditHold(recordID, userID int, reason string, until time.Time) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusHold {
		return nil, appErrors.NewPreconditionFailed("ad is not on hold")
	}
	if until.IsZero() {
		return nil, appErrors.NewValidation("hold_until", "must be set")
	}

	holdUntil := dateOnly(until)
	rec.HoldReason = reason
	rec.HoldUntil = &holdUntil

	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("hold_updated", rec)
	return rec, nil
}

// ReleaseHold moves a held ad back to enquiry. Both hold fields are cleared
// together with the status flip.
func (s *AdService) ReleaseHold(recordID, userID int) (*model.AdRecord, error) {
	rec, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusHold {
		return nil, appErrors.NewPreconditionFailed("ad is not on hold")
	}

	rec.Status = model.StatusEnquiry
	rec.HoldReason = ""
	rec.HoldUntil = nil

	if err := s.AdRecordRepo.Update(rec); err != nil {
		return nil, err
	}
	s.publish("hold_released", rec)
	return rec, nil
}

// ====================== Renewal ======================

// Renew opens a fresh enquiry from a completed ad, copying its identity
// fields and linking back via renewed_from. The link is what removes the
// original from the renewal follow-up list.
func (s *AdService) Renew(recordID, userID int) (*model.AdRecord, error) {
	original, err := s.AdRecordRepo.GetForUser(recordID, userID)
	if err != nil {
		return nil, err
	}
	if original.Status != model.StatusCompleted {
		return nil, appErrors.NewPreconditionFailed(
			fmt.Sprintf("only completed ads can be renewed, ad is %q", original.Status))
	}

	rec := &model.AdRecord{
		UserID:       &userID,
		AdName:       original.AdName,
		BusinessName: original.BusinessName,
		MobileNumber: original.MobileNumber,
		Notes:        fmt.Sprintf("Renewal of %s. Previous notes: %s", original.AdName, original.Notes),
		EntryDate:    s.now(),
		Status:       model.StatusEnquiry,
		RenewedFrom:  &original.ID,
	}
	if err := s.AdRecordRepo.Create(rec); err != nil {
		return nil, err
	}

	if _, _, err := s.Scheduler.OnEnquiryCreated(rec); err != nil {
		log.Println("⚠️ failed to schedule follow-ups for renewal", rec.ID, ":", err)
	}

	s.publish("ad_renewed", rec)
	return rec, nil
}

// ====================== Reads ======================

// Dashboard groups a user's ads by status, plus the completed ads still
// eligible for a renewal nudge.
type Dashboard struct {
	Enquiries    []*model.AdRecord `json:"enquiries"`
	PendingAds   []*model.AdRecord `json:"pending_ads"`
	ActiveAds    []*model.AdRecord `json:"active_ads"`
	CompletedAds []*model.AdRecord `json:"completed_ads"`
	OnHold       []*model.AdRecord `json:"on_hold"`
	FollowUpAds  []*model.AdRecord `json:"follow_up_ads"`
}

func (s *AdService) Dashboard(userID int) (*Dashboard, error) {
	d := &Dashboard{}
	buckets := []struct {
		status model.Status
		dest   *[]*model.AdRecord
	}{
		{model.StatusEnquiry, &d.Enquiries},
		{model.StatusPending, &d.PendingAds},
		{model.StatusActive, &d.ActiveAds},
		{model.StatusCompleted, &d.CompletedAds},
		{model.StatusHold, &d.OnHold},
	}
	for _, b := range buckets {
		records, _, err := s.AdRecordRepo.List(0, 200, string(b.status), &userID)
		if err != nil {
			return nil, err
		}
		*b.dest = records
	}

	followUps, err := s.AdRecordRepo.ListRenewalCandidates(userID)
	if err != nil {
		return nil, err
	}
	d.FollowUpAds = followUps
	return d, nil
}

// EnquiryHistory returns a user's enquiries older than the follow-up window
// (entered more than two days before asOf).
func (s *AdService) EnquiryHistory(userID int, asOf time.Time) ([]*model.AdRecord, error) {
	cutoff := dateOnly(asOf).AddDate(0, 0, -2)
	return s.AdRecordRepo.ListEnquiriesOlderThan(userID, cutoff)
}

// LookupByMobile finds every ad record sharing a contact number.
func (s *AdService) LookupByMobile(mobile string) ([]*model.AdRecord, error) {
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}
	return s.AdRecordRepo.FindByMobile(mobile)
}

// StatusReport summarizes a date range: per-status counts and the revenue
// booked by active/completed ads.
type StatusReport struct {
	From    time.Time            `json:"from"`
	To      time.Time            `json:"to"`
	Counts  map[model.Status]int `json:"counts"`
	Revenue int                  `json:"revenue"`
}

func (s *AdService) StatusReport(from, to time.Time) (*StatusReport, error) {
	counts, revenue, err := s.AdRecordRepo.StatusReport(from, to)
	if err != nil {
		return nil, err
	}
	return &StatusReport{From: from, To: to, Counts: counts, Revenue: revenue}, nil
}

// ====================== Owner removal ======================

// DetachOwner handles administrative removal of a user: their records lose
// the owner reference but stay in the system as history. Returns how many
// records were detached.
func (s *AdService) DetachOwner(userID int) (int, error) {
	n, err := s.AdRecordRepo.ClearOwner(userID)
	if err != nil {
		return 0, err
	}
	if n > 0 && s.Events != nil {
		if err := s.Events.PublishAdUpdate(events.AdUpdateEvent{Type: "owner_removed"}); err != nil {
			log.Println("⚠️ failed to publish owner removal event:", err)
		}
	}
	return n, nil
}

// ====================== Daily sweep ======================

// SweepResult reports what a daily sweep moved.
type SweepResult struct {
	Completed        int `json:"completed"`
	HoldsReleased    int `json:"holds_released"`
	FollowUpsCreated int `json:"follow_ups_created"`
}

// RunDailySweep runs the date-driven transitions across the whole table:
// expired actives complete, expired holds fall back to enquiry with their
// hold fields cleared, and the follow-up catch-up pass fills missing
// reminders. Intended to run once a day; re-running is harmless.
func (s *AdService) RunDailySweep(asOf time.Time) (*SweepResult, error) {
	res := &SweepResult{}
	asOf = dateOnly(asOf)

	expired, err := s.AdRecordRepo.ListActiveExpired(asOf)
	if err != nil {
		return nil, err
	}
	for _, rec := range expired {
		if ApplyLifecycle(rec, asOf) {
			if err := s.AdRecordRepo.Update(rec); err != nil {
				return res, err
			}
			res.Completed++
		}
	}

	held, err := s.AdRecordRepo.ListExpiredHolds(asOf)
	if err != nil {
		return res, err
	}
	for _, rec := range held {
		if ApplyLifecycle(rec, asOf) {
			rec.HoldReason = ""
			rec.HoldUntil = nil
			if err := s.AdRecordRepo.Update(rec); err != nil {
				return res, err
			}
			res.HoldsReleased++
		}
	}

	created, err := s.Scheduler.Sweep(asOf)
	res.FollowUpsCreated = created
	if err != nil {
		return res, err
	}

	if res.Completed > 0 || res.HoldsReleased > 0 {
		if s.Events != nil {
			err := s.Events.PublishAdUpdate(events.AdUpdateEvent{Type: "sweep"})
			if err != nil {
				log.Println("⚠️ failed to publish sweep event:", err)
			}
		}
	}
	return res, nil
}
