package service_test

import (
	"sync"
	"time"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/repository"
)

// In-memory repositories backing the service tests.

type memAdRepo struct {
	mu      sync.Mutex
	nextID  int
	records map[int]*model.AdRecord
}

func newMemAdRepo() *memAdRepo {
	return &memAdRepo{records: map[int]*model.AdRecord{}}
}

func cloneRecord(r *model.AdRecord) *model.AdRecord {
	c := *r
	return &c
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (m *memAdRepo) Create(r *model.AdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	if r.EntryDate.IsZero() {
		r.EntryDate = time.Now()
	}
	r.UpdatedAt = time.Now()
	m.records[r.ID] = cloneRecord(r)
	return nil
}

func (m *memAdRepo) GetByID(id int) (*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, appErrors.NewNotFound("ad record", id)
	}
	return cloneRecord(r), nil
}

func (m *memAdRepo) GetForUser(id, userID int) (*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.UserID == nil || *r.UserID != userID {
		return nil, appErrors.NewNotFound("ad record", id)
	}
	return cloneRecord(r), nil
}

func (m *memAdRepo) Update(r *model.AdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; !ok {
		return appErrors.NewNotFound("ad record", r.ID)
	}
	r.UpdatedAt = time.Now()
	m.records[r.ID] = cloneRecord(r)
	return nil
}

func (m *memAdRepo) all() []*model.AdRecord {
	out := []*model.AdRecord{}
	for _, r := range m.records {
		out = append(out, cloneRecord(r))
	}
	return out
}

func (m *memAdRepo) List(offset, limit int, status string, userID *int) ([]*model.AdRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []*model.AdRecord{}
	for _, r := range m.all() {
		if status != "" && string(r.Status) != status {
			continue
		}
		if userID != nil && (r.UserID == nil || *r.UserID != *userID) {
			continue
		}
		matched = append(matched, r)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *memAdRepo) ListActiveExpired(asOf time.Time) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.Status == model.StatusActive && r.EndDate != nil && r.EndDate.Before(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) ListExpiredHolds(asOf time.Time) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.Status == model.StatusHold && r.HoldUntil != nil && r.HoldUntil.Before(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) ListEnquiriesEnteredOn(day time.Time) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.Status == model.StatusEnquiry && sameDay(r.EntryDate, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) ListRenewalCandidates(userID int) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.Status != model.StatusCompleted || r.UserID == nil || *r.UserID != userID {
			continue
		}
		renewed := false
		for _, other := range m.records {
			if other.RenewedFrom != nil && *other.RenewedFrom == r.ID {
				renewed = true
				break
			}
		}
		if !renewed {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) ListEnquiriesOlderThan(userID int, before time.Time) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.Status == model.StatusEnquiry && r.UserID != nil && *r.UserID == userID && r.EntryDate.Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) FindByMobile(mobile string) ([]*model.AdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.AdRecord{}
	for _, r := range m.all() {
		if r.MobileNumber == mobile {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAdRepo) AggregateSignature(userID *int) (*model.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := &model.Signature{Counts: map[model.Status]int{}}
	for _, r := range m.records {
		if userID != nil && (r.UserID == nil || *r.UserID != *userID) {
			continue
		}
		sig.Total++
		sig.Counts[r.Status]++
		if r.ID > sig.MaxID {
			sig.MaxID = r.ID
		}
		if r.UpdatedAt.After(sig.LastUpdated) {
			sig.LastUpdated = r.UpdatedAt
		}
	}
	return sig, nil
}

func (m *memAdRepo) StatusReport(from, to time.Time) (map[model.Status]int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[model.Status]int{}
	revenue := 0
	for _, r := range m.records {
		if r.EntryDate.Before(from) || r.EntryDate.After(to) {
			continue
		}
		counts[r.Status]++
		if r.Status == model.StatusActive || r.Status == model.StatusCompleted {
			if r.Amount != nil {
				revenue += *r.Amount
			}
		}
	}
	return counts, revenue, nil
}

func (m *memAdRepo) ClearOwner(userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.UserID != nil && *r.UserID == userID {
			r.UserID = nil
			n++
		}
	}
	return n, nil
}

var _ repository.AdRecordRepositoryInterface = (*memAdRepo)(nil)

type followUpKey struct {
	recordID int
	kind     model.FollowUpKind
}

type memFollowUpRepo struct {
	mu        sync.Mutex
	nextID    int
	followUps map[followUpKey]*model.FollowUp
}

func newMemFollowUpRepo() *memFollowUpRepo {
	return &memFollowUpRepo{followUps: map[followUpKey]*model.FollowUp{}}
}

func cloneFollowUp(f *model.FollowUp) *model.FollowUp {
	c := *f
	return &c
}

func (m *memFollowUpRepo) GetOrCreate(adRecordID int, kind model.FollowUpKind, date time.Time) (*model.FollowUp, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := followUpKey{recordID: adRecordID, kind: kind}
	if existing, ok := m.followUps[key]; ok {
		return cloneFollowUp(existing), false, nil
	}
	m.nextID++
	f := &model.FollowUp{
		ID:           m.nextID,
		AdRecordID:   adRecordID,
		Kind:         kind,
		FollowUpDate: date,
		CreatedAt:    time.Now(),
	}
	m.followUps[key] = f
	return cloneFollowUp(f), true, nil
}

func (m *memFollowUpRepo) GetByRecordAndKind(adRecordID int, kind model.FollowUpKind) (*model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.followUps[followUpKey{recordID: adRecordID, kind: kind}]; ok {
		return cloneFollowUp(f), nil
	}
	return nil, nil
}

func (m *memFollowUpRepo) GetByIDAndKind(id int, kind model.FollowUpKind) (*model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.followUps {
		if f.ID == id && f.Kind == kind {
			return cloneFollowUp(f), nil
		}
	}
	return nil, appErrors.NewNotFound("follow-up", id)
}

func (m *memFollowUpRepo) Update(f *model.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := followUpKey{recordID: f.AdRecordID, kind: f.Kind}
	if _, ok := m.followUps[key]; !ok {
		return appErrors.NewNotFound("follow-up", f.ID)
	}
	m.followUps[key] = cloneFollowUp(f)
	return nil
}

func (m *memFollowUpRepo) ListDueOn(date time.Time, kind model.FollowUpKind, userID *int) ([]*model.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.FollowUp{}
	for _, f := range m.followUps {
		if f.Kind == kind && sameDay(f.FollowUpDate, date) {
			out = append(out, cloneFollowUp(f))
		}
	}
	return out, nil
}

func (m *memFollowUpRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.followUps)
}

var _ repository.FollowUpRepositoryInterface = (*memFollowUpRepo)(nil)
