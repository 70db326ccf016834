// internal/repository/follow_up_repository.go
package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/adsofthq/adtrack-backend/internal/errors"
	"github.com/adsofthq/adtrack-backend/internal/model"
)

type FollowUpRepositoryInterface interface {
	GetOrCreate(adRecordID int, kind model.FollowUpKind, date time.Time) (*model.FollowUp, bool, error)
	GetByRecordAndKind(adRecordID int, kind model.FollowUpKind) (*model.FollowUp, error)
	GetByIDAndKind(id int, kind model.FollowUpKind) (*model.FollowUp, error)
	Update(f *model.FollowUp) error
	ListDueOn(date time.Time, kind model.FollowUpKind, userID *int) ([]*model.FollowUp, error)
}

type FollowUpRepository struct {
	DB *sql.DB
}

const followUpColumns = `id, ad_record_id, kind, follow_up_date, notes, contacted, contact_method, response, created_at`

func scanFollowUp(row rowScanner) (*model.FollowUp, error) {
	var f model.FollowUp
	err := row.Scan(
		&f.ID, &f.AdRecordID, &f.Kind, &f.FollowUpDate, &f.Notes,
		&f.Contacted, &f.ContactMethod, &f.Response, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetOrCreate inserts a reminder unless one of this kind already exists for
// the record. Returns the reminder and whether it was created now. The
// unique (ad_record_id, kind) index backs the idempotency.
func (repo *FollowUpRepository) GetOrCreate(adRecordID int, kind model.FollowUpKind, date time.Time) (*model.FollowUp, bool, error) {
	existing, err := repo.GetByRecordAndKind(adRecordID, kind)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO follow_ups (ad_record_id, kind, follow_up_date, notes, contacted, contact_method, response, created_at)
		VALUES ($1, $2, $3, '', FALSE, '', '', NOW())
		ON CONFLICT (ad_record_id, kind) DO NOTHING
		RETURNING ` + followUpColumns

	f, err := scanFollowUp(repo.DB.QueryRow(query, adRecordID, kind, date))
	if err != nil {
		if err == sql.ErrNoRows {
			// Lost a concurrent insert race; the row exists now.
			f, err = repo.GetByRecordAndKind(adRecordID, kind)
			return f, false, err
		}
		return nil, false, err
	}
	return f, true, nil
}

func (repo *FollowUpRepository) GetByRecordAndKind(adRecordID int, kind model.FollowUpKind) (*model.FollowUp, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_ups WHERE ad_record_id=$1 AND kind=$2`
	f, err := scanFollowUp(repo.DB.QueryRow(query, adRecordID, kind))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (repo *FollowUpRepository) GetByIDAndKind(id int, kind model.FollowUpKind) (*model.FollowUp, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_ups WHERE id=$1 AND kind=$2`
	f, err := scanFollowUp(repo.DB.QueryRow(query, id, kind))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("follow-up", id)
		}
		return nil, err
	}
	return f, nil
}

func (repo *FollowUpRepository) Update(f *model.FollowUp) error {
	query := `
		UPDATE follow_ups
		SET notes=$1, contacted=$2, contact_method=$3, response=$4
		WHERE id=$5
	`
	res, err := repo.DB.Exec(query, f.Notes, f.Contacted, f.ContactMethod, f.Response, f.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound("follow-up", f.ID)
	}
	return nil
}

func (repo *FollowUpRepository) ListDueOn(date time.Time, kind model.FollowUpKind, userID *int) ([]*model.FollowUp, error) {
	query := `
		SELECT f.id, f.ad_record_id, f.kind, f.follow_up_date, f.notes, f.contacted, f.contact_method, f.response, f.created_at
		FROM follow_ups f
		JOIN ad_records a ON a.id = f.ad_record_id
		WHERE f.follow_up_date = $1::date AND f.kind = $2`
	args := []interface{}{date, kind}
	if userID != nil {
		query += ` AND a.user_id = $3`
		args = append(args, *userID)
	}
	query += ` ORDER BY f.id`

	rows, err := repo.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followUps := []*model.FollowUp{}
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

var _ FollowUpRepositoryInterface = (*FollowUpRepository)(nil)
