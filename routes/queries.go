package routes

import (
	"context"
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

var errNotFound = errors.New("not found")

type scanner interface {
	Scan(dest ...any) error
}

const surveyColumns = `id, title, description, structure, expires_at, is_active, is_anonymous, created_by, created_at, updated_at`

func scanSurvey(row scanner) (s model.Survey, err error) {
	var structure string
	var expiresAt sql.NullTime
	err = row.Scan(
		&s.ID, &s.Title, &s.Description, &structure, &expiresAt,
		&s.IsActive, &s.IsAnonymous, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return
	}
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	err = json.Unmarshal([]byte(structure), &s.Structure)
	return
}

func findSurvey(ctx context.Context, db auth.Querier, id string) (model.Survey, error) {
	s, err := scanSurvey(db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM survey WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return s, errNotFound
	}
	return s, err
}

func scanRecord(row scanner) (rec model.AnswerRecord, err error) {
	var data string
	err = row.Scan(&rec.ID, &rec.SurveyID, &data, &rec.SubmitterIP, &rec.SubmittedAt)
	if err != nil {
		return
	}
	err = json.Unmarshal([]byte(data), &rec.Data)
	return
}

// listRecords returns the stored responses of a survey, oldest first.
func listRecords(ctx context.Context, db *sql.DB, surveyID string) ([]model.AnswerRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, survey_id, data, ip, submitted_at
		FROM response
		WHERE survey_id = ?
		ORDER BY submitted_at, id`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AnswerRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// expiry parses the accepted forms of expiresAt: RFC 3339 date-times and
// bare dates. Empty means no expiry.
func expiry(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
