package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adsofthq/adtrack-backend/internal/model"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to model.Status }{
		{model.StatusEnquiry, model.StatusHold},
		{model.StatusEnquiry, model.StatusPending},
		{model.StatusHold, model.StatusEnquiry},
		{model.StatusPending, model.StatusActive},
		{model.StatusActive, model.StatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	forbidden := []struct{ from, to model.Status }{
		{model.StatusEnquiry, model.StatusActive},
		{model.StatusEnquiry, model.StatusCompleted},
		{model.StatusHold, model.StatusPending},
		{model.StatusPending, model.StatusEnquiry},
		{model.StatusActive, model.StatusEnquiry},
		{model.StatusCompleted, model.StatusActive},
		{model.StatusCompleted, model.StatusEnquiry},
	}
	for _, tr := range forbidden {
		assert.False(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be rejected", tr.from, tr.to)
	}
}

func intPtr(i int) *int { return &i }

func TestDurationDays(t *testing.T) {
	cases := []struct {
		name string
		rec  model.AdRecord
		want int
	}{
		{"no amount", model.AdRecord{}, 0},
		{"fixed tier", model.AdRecord{Amount: intPtr(4000)}, 20},
		{"custom tier", model.AdRecord{Amount: intPtr(3500), CustomDays: intPtr(15)}, 15},
		{"custom without days", model.AdRecord{Amount: intPtr(3500)}, 0},
		{"custom with non-positive days", model.AdRecord{Amount: intPtr(3500), CustomDays: intPtr(-1)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rec.DurationDays())
		})
	}
}
