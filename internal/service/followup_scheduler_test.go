package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/service"
)

func newScheduler() (*service.FollowUpScheduler, *memAdRepo, *memFollowUpRepo) {
	adRepo := newMemAdRepo()
	followUpRepo := newMemFollowUpRepo()
	return &service.FollowUpScheduler{
		FollowUpRepo: followUpRepo,
		AdRecordRepo: adRepo,
	}, adRepo, followUpRepo
}

func TestOnEnquiryCreatedSchedulesBothReminders(t *testing.T) {
	scheduler, adRepo, _ := newScheduler()

	rec := &model.AdRecord{
		UserID:    intPtr(1),
		AdName:    "Summer Sale",
		EntryDate: date(2024, time.June, 1),
		Status:    model.StatusEnquiry,
	}
	require.NoError(t, adRepo.Create(rec))

	day1, day2, err := scheduler.OnEnquiryCreated(rec)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.June, 2), day1.FollowUpDate)
	assert.Equal(t, date(2024, time.June, 3), day2.FollowUpDate)
	assert.False(t, day1.Contacted)
	assert.Empty(t, day1.ContactMethod)
}

func TestOnEnquiryCreatedIsIdempotent(t *testing.T) {
	scheduler, adRepo, followUpRepo := newScheduler()

	rec := &model.AdRecord{UserID: intPtr(1), EntryDate: date(2024, time.June, 1), Status: model.StatusEnquiry}
	require.NoError(t, adRepo.Create(rec))

	first1, first2, err := scheduler.OnEnquiryCreated(rec)
	require.NoError(t, err)

	again1, again2, err := scheduler.OnEnquiryCreated(rec)
	require.NoError(t, err)

	assert.Equal(t, first1.ID, again1.ID)
	assert.Equal(t, first2.ID, again2.ID)
	assert.Equal(t, 2, followUpRepo.count())
}

func TestSweepCreatesMissingReminders(t *testing.T) {
	scheduler, adRepo, _ := newScheduler()
	asOf := date(2024, time.June, 10)

	// Bulk-imported enquiries that never got the creation-time hook.
	yesterday := &model.AdRecord{UserID: intPtr(1), EntryDate: asOf.AddDate(0, 0, -1), Status: model.StatusEnquiry}
	older := &model.AdRecord{UserID: intPtr(1), EntryDate: asOf.AddDate(0, 0, -2), Status: model.StatusEnquiry}
	today := &model.AdRecord{UserID: intPtr(1), EntryDate: asOf, Status: model.StatusEnquiry}
	for _, rec := range []*model.AdRecord{yesterday, older, today} {
		require.NoError(t, adRepo.Create(rec))
	}

	created, err := scheduler.Sweep(asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, created) // day1 for yesterday's, day2 for the older one

	day1, err := scheduler.ListDue(asOf, model.FollowUpDay1, nil)
	require.NoError(t, err)
	require.Len(t, day1, 1)
	assert.Equal(t, yesterday.ID, day1[0].AdRecordID)

	day2, err := scheduler.ListDue(asOf, model.FollowUpDay2, nil)
	require.NoError(t, err)
	require.Len(t, day2, 1)
	assert.Equal(t, older.ID, day2[0].AdRecordID)

	// Re-running materializes nothing new.
	created, err = scheduler.Sweep(asOf)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestRecordContact(t *testing.T) {
	scheduler, adRepo, _ := newScheduler()

	rec := &model.AdRecord{UserID: intPtr(1), EntryDate: date(2024, time.June, 1), Status: model.StatusEnquiry}
	require.NoError(t, adRepo.Create(rec))
	day1, _, err := scheduler.OnEnquiryCreated(rec)
	require.NoError(t, err)

	updated, err := scheduler.RecordContact(day1.ID, model.FollowUpDay1, true, "Phone", "Interested, will call back", "spoke to owner")
	require.NoError(t, err)
	assert.True(t, updated.Contacted)
	assert.Equal(t, "Phone", updated.ContactMethod)
	assert.Equal(t, "Interested, will call back", updated.Response)
}

func TestRecordContactUnknownReminder(t *testing.T) {
	scheduler, _, _ := newScheduler()

	_, err := scheduler.RecordContact(99, model.FollowUpDay1, true, "Phone", "", "")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}
