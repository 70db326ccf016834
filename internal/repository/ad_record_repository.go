// internal/repository/ad_record_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/model"
)

type AdRecordRepositoryInterface interface {
	// Ad record CRUD
	Create(r *model.AdRecord) error
	GetByID(id int) (*model.AdRecord, error)
	GetForUser(id, userID int) (*model.AdRecord, error)
	Update(r *model.AdRecord) error
	List(offset, limit int, status string, userID *int) ([]*model.AdRecord, int, error)

	// Sweep and dashboard queries
	ListActiveExpired(asOf time.Time) ([]*model.AdRecord, error)
	ListExpiredHolds(asOf time.Time) ([]*model.AdRecord, error)
	ListEnquiriesEnteredOn(day time.Time) ([]*model.AdRecord, error)
	ListRenewalCandidates(userID int) ([]*model.AdRecord, error)
	ListEnquiriesOlderThan(userID int, before time.Time) ([]*model.AdRecord, error)
	FindByMobile(mobile string) ([]*model.AdRecord, error)

	// Aggregates
	AggregateSignature(userID *int) (*model.Signature, error)
	StatusReport(from, to time.Time) (map[model.Status]int, int, error)

	// Owner removal nulls the reference instead of cascading
	ClearOwner(userID int) (int, error)
}

type AdRecordRepository struct {
	DB *sql.DB
}

const adRecordColumns = `id, user_id, ad_name, business_name, mobile_number, notes,
	entry_date, updated_at, start_date, end_date, amount, custom_amount, custom_days,
	upi_last_four, admin_upi_id, status, hold_reason, hold_until, renewed_from`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdRecord(row rowScanner) (*model.AdRecord, error) {
	var r model.AdRecord
	err := row.Scan(
		&r.ID, &r.UserID, &r.AdName, &r.BusinessName, &r.MobileNumber, &r.Notes,
		&r.EntryDate, &r.UpdatedAt, &r.StartDate, &r.EndDate, &r.Amount,
		&r.CustomAmount, &r.CustomDays, &r.UPILastFour, &r.AdminUPIID,
		&r.Status, &r.HoldReason, &r.HoldUntil, &r.RenewedFrom,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ====================== Ad record CRUD ======================

func (repo *AdRecordRepository) Create(r *model.AdRecord) error {
	if r.EntryDate.IsZero() {
		r.EntryDate = time.Now()
	}
	if r.Status == "" {
		r.Status = model.StatusEnquiry
	}
	r.UpdatedAt = time.Now()
	query := `
		INSERT INTO ad_records (user_id, ad_name, business_name, mobile_number, notes,
			entry_date, updated_at, start_date, end_date, amount, custom_amount, custom_days,
			upi_last_four, admin_upi_id, status, hold_reason, hold_until, renewed_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	return repo.DB.QueryRow(query,
		r.UserID, r.AdName, r.BusinessName, r.MobileNumber, r.Notes,
		r.EntryDate, r.UpdatedAt, r.StartDate, r.EndDate, r.Amount,
		r.CustomAmount, r.CustomDays, r.UPILastFour, r.AdminUPIID,
		r.Status, r.HoldReason, r.HoldUntil, r.RenewedFrom,
	).Scan(&r.ID)
}

// Update writes every mutable field in one statement so a derived-field
// recompute and a status flip are never persisted separately.
func (repo *AdRecordRepository) Update(r *model.AdRecord) error {
	r.UpdatedAt = time.Now()
	query := `
		UPDATE ad_records
		SET ad_name=$1, business_name=$2, mobile_number=$3, notes=$4,
			start_date=$5, end_date=$6, amount=$7, custom_amount=$8, custom_days=$9,
			upi_last_four=$10, admin_upi_id=$11, status=$12,
			hold_reason=$13, hold_until=$14, updated_at=$15
		WHERE id=$16
	`
	res, err := repo.DB.Exec(query,
		r.AdName, r.BusinessName, r.MobileNumber, r.Notes,
		r.StartDate, r.EndDate, r.Amount, r.CustomAmount, r.CustomDays,
		r.UPILastFour, r.AdminUPIID, r.Status,
		r.HoldReason, r.HoldUntil, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound("ad record", r.ID)
	}
	return nil
}

func (repo *AdRecordRepository) GetByID(id int) (*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + ` FROM ad_records WHERE id=$1`
	r, err := scanAdRecord(repo.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("ad record", id)
		}
		return nil, err
	}
	return r, nil
}

// GetForUser resolves a record only when it belongs to the given user.
func (repo *AdRecordRepository) GetForUser(id, userID int) (*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + ` FROM ad_records WHERE id=$1 AND user_id=$2`
	r, err := scanAdRecord(repo.DB.QueryRow(query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("ad record", id)
		}
		return nil, err
	}
	return r, nil
}

func (repo *AdRecordRepository) List(offset, limit int, status string, userID *int) ([]*model.AdRecord, int, error) {
	records := []*model.AdRecord{}
	query := `SELECT ` + adRecordColumns + ` FROM ad_records WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	if userID != nil {
		query += fmt.Sprintf(" AND user_id=$%d", argPos)
		args = append(args, *userID)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY entry_date DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := repo.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanAdRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, r)
	}

	countQuery := `SELECT COUNT(*) FROM ad_records WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
		argPosCount++
	}
	if userID != nil {
		countQuery += fmt.Sprintf(" AND user_id=$%d", argPosCount)
		argsCount = append(argsCount, *userID)
	}

	var total int
	if err := repo.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ====================== Sweep and dashboard queries ======================

func (repo *AdRecordRepository) queryRecords(query string, args ...interface{}) ([]*model.AdRecord, error) {
	rows, err := repo.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.AdRecord{}
	for rows.Next() {
		r, err := scanAdRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (repo *AdRecordRepository) ListActiveExpired(asOf time.Time) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records WHERE status='active' AND end_date IS NOT NULL AND end_date < $1`
	return repo.queryRecords(query, asOf)
}

func (repo *AdRecordRepository) ListExpiredHolds(asOf time.Time) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records WHERE status='hold' AND hold_until IS NOT NULL AND hold_until < $1`
	return repo.queryRecords(query, asOf)
}

// ListEnquiriesEnteredOn returns enquiries whose entry date falls on the given day.
func (repo *AdRecordRepository) ListEnquiriesEnteredOn(day time.Time) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records WHERE status='enquiry' AND entry_date::date = $1::date`
	return repo.queryRecords(query, day)
}

// ListRenewalCandidates returns completed records with no renewal pointing back.
func (repo *AdRecordRepository) ListRenewalCandidates(userID int) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records a
		WHERE a.status='completed' AND a.user_id=$1
		  AND NOT EXISTS (SELECT 1 FROM ad_records b WHERE b.renewed_from = a.id)
		ORDER BY a.entry_date DESC`
	return repo.queryRecords(query, userID)
}

func (repo *AdRecordRepository) ListEnquiriesOlderThan(userID int, before time.Time) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records WHERE status='enquiry' AND user_id=$1 AND entry_date < $2
		ORDER BY entry_date DESC`
	return repo.queryRecords(query, userID, before)
}

func (repo *AdRecordRepository) FindByMobile(mobile string) ([]*model.AdRecord, error) {
	query := `SELECT ` + adRecordColumns + `
		FROM ad_records WHERE mobile_number=$1 ORDER BY entry_date DESC`
	return repo.queryRecords(query, mobile)
}

// ====================== Aggregates ======================

// AggregateSignature computes the change-detection tuple over all records,
// or over one user's records when userID is non-nil.
func (repo *AdRecordRepository) AggregateSignature(userID *int) (*model.Signature, error) {
	sig := &model.Signature{Counts: map[model.Status]int{}}

	query := `SELECT COUNT(*), COALESCE(MAX(id), 0), COALESCE(MAX(updated_at), 'epoch'::timestamptz)
		FROM ad_records`
	args := []interface{}{}
	if userID != nil {
		query += ` WHERE user_id=$1`
		args = append(args, *userID)
	}
	if err := repo.DB.QueryRow(query, args...).Scan(&sig.Total, &sig.MaxID, &sig.LastUpdated); err != nil {
		return nil, err
	}

	countQuery := `SELECT status, COUNT(*) FROM ad_records`
	if userID != nil {
		countQuery += ` WHERE user_id=$1`
	}
	countQuery += ` GROUP BY status`

	rows, err := repo.DB.Query(countQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		sig.Counts[status] = count
	}
	return sig, rows.Err()
}

// StatusReport returns per-status counts and the revenue sum for records
// entered within [from, to].
func (repo *AdRecordRepository) StatusReport(from, to time.Time) (map[model.Status]int, int, error) {
	counts := map[model.Status]int{}
	rows, err := repo.DB.Query(`
		SELECT status, COUNT(*) FROM ad_records
		WHERE entry_date >= $1 AND entry_date <= $2
		GROUP BY status`, from, to)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, 0, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var revenue int
	err = repo.DB.QueryRow(`
		SELECT COALESCE(SUM(COALESCE(amount, custom_amount, 0)), 0) FROM ad_records
		WHERE entry_date >= $1 AND entry_date <= $2 AND status IN ('active','completed')`,
		from, to).Scan(&revenue)
	if err != nil {
		return nil, 0, err
	}
	return counts, revenue, nil
}

// ====================== Owner removal ======================

// ClearOwner detaches every record owned by the user; history is kept.
func (repo *AdRecordRepository) ClearOwner(userID int) (int, error) {
	res, err := repo.DB.Exec(`UPDATE ad_records SET user_id=NULL, updated_at=NOW() WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

var _ AdRecordRepositoryInterface = (*AdRecordRepository)(nil)
