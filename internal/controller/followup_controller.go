// internal/controller/followup_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/service"
)

type FollowUpController struct {
	Scheduler *service.FollowUpScheduler
}

func parseKind(raw string) (model.FollowUpKind, error) {
	switch raw {
	case string(model.FollowUpDay1):
		return model.FollowUpDay1, nil
	case string(model.FollowUpDay2):
		return model.FollowUpDay2, nil
	}
	return "", appErrors.NewValidation("kind", "must be day1 or day2")
}

// ListDue serves the day-1/day-2 follow-up queues for a date.
func (c *FollowUpController) ListDue(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}

	date := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, appErrors.NewValidation("date", "must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	var scope *int
	if uid, ok := userID(r); ok && r.URL.Query().Get("all") != "true" {
		scope = &uid
	}

	followUps, err := c.Scheduler.ListDue(date, kind, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": followUps})
}

// RecordContact stores the outcome of one contact attempt.
func (c *FollowUpController) RecordContact(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body struct {
		Kind          string `json:"kind" validate:"required"`
		Contacted     bool   `json:"contacted"`
		ContactMethod string `json:"contact_method"`
		Response      string `json:"response"`
		Notes         string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, err)
		return
	}

	kind, err := parseKind(body.Kind)
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := c.Scheduler.RecordContact(id, kind, body.Contacted, body.ContactMethod, body.Response, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
