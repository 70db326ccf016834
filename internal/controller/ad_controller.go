// internal/controller/ad_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/service"
)

var validate = validator.New()

// userID reads the identity reference from the X-User-ID header. Auth is
// handled upstream; the core only needs the reference.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.Header.Get("X-User-ID"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case appErrors.IsNotFound(err):
		status = http.StatusNotFound
	case appErrors.IsPreconditionFailed(err):
		status = http.StatusConflict
	case appErrors.IsValidation(err):
		status = http.StatusUnprocessableEntity
	default:
		if _, ok := err.(validator.ValidationErrors); ok {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid X-User-ID header"})
}

type AdController struct {
	AdService *service.AdService
}

func (c *AdController) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	var body struct {
		AdName       string `json:"ad_name" validate:"required"`
		BusinessName string `json:"business_name" validate:"required"`
		MobileNumber string `json:"mobile_number" validate:"required"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, err)
		return
	}

	rec, err := c.AdService.CreateEnquiry(uid, body.AdName, body.BusinessName, body.MobileNumber, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (c *AdController) EditEnquiry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body struct {
		AdName       string `json:"ad_name"`
		BusinessName string `json:"business_name"`
		MobileNumber string `json:"mobile_number"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := c.AdService.EditEnquiry(id, uid, body.AdName, body.BusinessName, body.MobileNumber, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *AdController) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body struct {
		Amount       int    `json:"amount"`
		CustomAmount int    `json:"custom_amount"`
		CustomDays   int    `json:"custom_days"`
		UPILastFour  string `json:"upi_last_four" validate:"required,len=4,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, err)
		return
	}

	rec, err := c.AdService.SubmitPayment(id, uid, body.Amount, body.CustomAmount, body.CustomDays, body.UPILastFour)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *AdController) VerifyAndActivate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body struct {
		FullUPIID string `json:"full_upi_id" validate:"required,min=4"`
		StartDate string `json:"start_date" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, err)
		return
	}

	startDate, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		writeError(w, appErrors.NewValidation("start_date", "must be YYYY-MM-DD"))
		return
	}

	rec, err := c.AdService.VerifyAndActivate(id, body.FullUPIID, startDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *AdController) PlaceHold(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	body, err := decodeHoldBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := c.AdService.PlaceHold(id, uid, body.reason, body.until)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *AdController) EditHold(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	body, err := decodeHoldBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := c.AdService.EditHold(id, uid, body.reason, body.until)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type holdBody struct {
	reason string
	until  time.Time
}

func decodeHoldBody(r *http.Request) (*holdBody, error) {
	var body struct {
		Reason    string `json:"reason" validate:"required"`
		HoldUntil string `json:"hold_until" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, appErrors.NewValidation("body", "invalid JSON")
	}
	if err := validate.Struct(body); err != nil {
		return nil, err
	}
	until, err := time.Parse("2006-01-02", body.HoldUntil)
	if err != nil {
		return nil, appErrors.NewValidation("hold_until", "must be YYYY-MM-DD")
	}
	return &holdBody{reason: body.Reason, until: until}, nil
}

func (c *AdController) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	rec, err := c.AdService.ReleaseHold(id, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *AdController) Renew(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	rec, err := c.AdService.Renew(id, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (c *AdController) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	d, err := c.AdService.Dashboard(uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (c *AdController) EnquiryHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	records, err := c.AdService.EnquiryHistory(uid, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (c *AdController) LookupByMobile(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobile")
	if mobile == "" {
		writeError(w, appErrors.NewValidation("mobile", "query parameter required"))
		return
	}

	records, err := c.AdService.LookupByMobile(mobile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (c *AdController) StatusReport(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, appErrors.NewValidation("from", "must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, appErrors.NewValidation("to", "must be YYYY-MM-DD"))
		return
	}
	// Include the whole "to" day.
	to = to.AddDate(0, 0, 1).Add(-time.Second)

	report, err := c.AdService.StatusReport(from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (c *AdController) RunSweep(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if d := r.URL.Query().Get("as_of"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, appErrors.NewValidation("as_of", "must be YYYY-MM-DD"))
			return
		}
		asOf = parsed
	}

	res, err := c.AdService.RunDailySweep(asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListAds serves the admin listing with status filter and pagination.
func (c *AdController) ListAds(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var scope *int
	if uid, ok := userID(r); ok && r.URL.Query().Get("all") != "true" {
		scope = &uid
	}

	records, total, err := c.AdService.AdRecordRepo.List((page-1)*pageSize, pageSize, status, scope)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": records,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// DetachOwner clears the owner reference on all of a removed user's records.
func (c *AdController) DetachOwner(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, appErrors.NewValidation("id", "must be a positive integer"))
		return
	}

	n, err := c.AdService.DetachOwner(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"detached": n})
}

func (c *AdController) GetAd(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	rec, err := c.AdService.AdRecordRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
