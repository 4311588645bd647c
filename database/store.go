package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbolis/survey-studio/clock"
	"github.com/mbolis/survey-studio/config"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store is the persistence façade for surveys, responses and admin users.
type Store struct {
	db     *sql.DB
	driver string
	clock  clock.Clock
}

func NewStore(db *sql.DB, driver string, clk clock.Clock) *Store {
	return &Store{db: db, driver: driver, clock: clk}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// q adapts a query written with ? placeholders to the driver.
func (s *Store) q(query string) string {
	if s.driver == config.DriverPostgres {
		return rebind(query)
	}
	return query
}

type scanner interface {
	Scan(dest ...any) error
}

const surveyColumns = `id, version, title, description, logo, fields, success_page, is_active, created_at, updated_at`

func scanSurvey(row scanner) (survey model.Survey, err error) {
	var fields, successPage []byte
	err = row.Scan(
		&survey.ID, &survey.Version, &survey.Title, &survey.Description, &survey.Logo,
		&fields, &successPage, &survey.IsActive, &survey.CreatedAt, &survey.UpdatedAt,
	)
	if err != nil {
		return
	}

	if err = json.Unmarshal(fields, &survey.Fields); err != nil {
		err = fmt.Errorf("survey %s: parse fields: %w", survey.ID, err)
		return
	}
	if len(successPage) > 0 && !bytes.Equal(successPage, []byte("null")) {
		survey.SuccessPage = &model.SuccessPage{}
		if err = json.Unmarshal(successPage, survey.SuccessPage); err != nil {
			err = fmt.Errorf("survey %s: parse success page: %w", survey.ID, err)
			return
		}
	}
	if survey.Fields == nil {
		survey.Fields = []model.Field{}
	}
	return
}

func encodeSurvey(survey *model.Survey) (fields string, successPage any, err error) {
	f := survey.Fields
	if f == nil {
		f = []model.Field{}
	}
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	fields = string(data)

	if survey.SuccessPage != nil {
		data, err = json.Marshal(survey.SuccessPage)
		if err != nil {
			return
		}
		successPage = string(data)
	}
	return
}

func (s *Store) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM survey
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (s *Store) GetSurvey(ctx context.Context, id string) (model.Survey, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT `+surveyColumns+`
		FROM survey
		WHERE id = ?`),
		id,
	)
	survey, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, fmt.Errorf("survey %s: %w", id, ErrNotFound)
	}
	return survey, err
}

// CreateSurvey inserts a new survey at version 1. A taken id is reported as
// ErrConflict.
func (s *Store) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	fields, successPage, err := encodeSurvey(survey)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO survey (id, version, title, description, logo, fields, success_page, is_active, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		survey.ID, survey.Title, survey.Description, survey.Logo,
		fields, successPage, survey.IsActive, now, now,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("survey %s: %w", survey.ID, ErrConflict)
	}

	survey.Version = 1
	survey.CreatedAt = now
	survey.UpdatedAt = now
	return nil
}

// UpdateSurvey replaces a survey definition. When survey.Version is set it
// must match the stored one (optimistic lock), otherwise ErrConflict.
func (s *Store) UpdateSurvey(ctx context.Context, survey *model.Survey) error {
	fields, successPage, err := encodeSurvey(survey)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE survey
		SET
			title = ?,
			description = ?,
			logo = ?,
			fields = ?,
			success_page = ?,
			is_active = ?,
			updated_at = ?,
			version = version+1
		WHERE id = ?
			AND (? = 0 OR version = ?)`),
		survey.Title, survey.Description, survey.Logo, fields, successPage, survey.IsActive, now,
		survey.ID, survey.Version, survey.Version,
	)
	if err != nil {
		return err
	}
	// optimistic lock
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		if _, err := s.GetSurvey(ctx, survey.ID); err != nil {
			return err
		}
		return fmt.Errorf("survey %s version %d: %w", survey.ID, survey.Version, ErrConflict)
	}

	stored, err := s.GetSurvey(ctx, survey.ID)
	if err != nil {
		return err
	}
	*survey = stored
	return nil
}

// SetSurveyActive opens or closes a survey to new responses.
func (s *Store) SetSurveyActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE survey
		SET is_active = ?, updated_at = ?
		WHERE id = ?`),
		active, s.clock.Now(), id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, "survey "+id)
}

// DeleteSurvey removes a survey and all of its responses.
func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		DELETE FROM response
		WHERE survey_id = ?`),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM survey WHERE id = ?`),
		id,
	)
	if err != nil {
		return err
	}
	if err = expectRow(res, "survey "+id); err != nil {
		return err
	}
	return tx.Commit()
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

const responseColumns = `id, survey_id, answers, submitted_at, user_agent, ip_address`

func scanResponse(row scanner) (r model.Response, err error) {
	var answers []byte
	err = row.Scan(&r.ID, &r.SurveyID, &answers, &r.SubmittedAt, &r.UserAgent, &r.IPAddress)
	if err != nil {
		return
	}
	if err = json.Unmarshal(answers, &r.Answers); err != nil {
		err = fmt.Errorf("response %s: parse answers: %w", r.ID, err)
	}
	return
}

// ListResponses returns the responses of a survey, oldest first.
func (s *Store) ListResponses(ctx context.Context, surveyID string) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+responseColumns+`
		FROM response
		WHERE survey_id = ?
		ORDER BY submitted_at, id`),
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (s *Store) GetResponse(ctx context.Context, surveyID, id string) (model.Response, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT `+responseColumns+`
		FROM response
		WHERE survey_id = ?
			AND id = ?`),
		surveyID, id,
	)
	r, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Response{}, fmt.Errorf("response %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *Store) DeleteResponse(ctx context.Context, surveyID, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM response
		WHERE survey_id = ?
			AND id = ?`),
		surveyID, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, "response "+id)
}

// SaveResponse stamps and inserts a response. It reports stored=false,
// without error, when the same IP sent the same answers to the same survey
// within window, or when the id already exists. In the first case r.ID is
// set to the id of the earlier response.
//
// The check and the insert are not atomic: two identical submissions racing
// each other may both be stored.
func (s *Store) SaveResponse(ctx context.Context, r *model.Response, window time.Duration) (stored bool, err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.SubmittedAt = s.clock.Now()
	if r.Answers == nil {
		r.Answers = model.Answers{}
	}

	answers, err := r.Answers.Canonical()
	if err != nil {
		return false, err
	}

	if window > 0 && r.IPAddress != "" {
		dupID, err := s.findDuplicate(ctx, r, answers, window)
		if err != nil {
			return false, fmt.Errorf("duplicate check: %w", err)
		}
		if dupID != "" {
			log.WithFields(log.Fields{"survey": r.SurveyID, "ip": r.IPAddress, "response": dupID}).
				Debug("duplicate submission ignored")
			r.ID = dupID
			return false, nil
		}
	}

	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO response (id, survey_id, answers, submitted_at, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		r.ID, r.SurveyID, string(answers), r.SubmittedAt, r.UserAgent, r.IPAddress,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n < 1 {
		log.Debugf("response %s already stored", r.ID)
		return false, nil
	}
	return true, nil
}

func (s *Store) findDuplicate(ctx context.Context, r *model.Response, answers []byte, window time.Duration) (string, error) {
	since := r.SubmittedAt.Add(-window)
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, answers, submitted_at
		FROM response
		WHERE survey_id = ?
			AND ip_address = ?
			AND submitted_at >= ?
		ORDER BY submitted_at DESC`),
		r.SurveyID, r.IPAddress, since,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          string
			raw         []byte
			submittedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &submittedAt); err != nil {
			return "", err
		}
		if r.SubmittedAt.Sub(submittedAt) > window {
			continue
		}

		var previous model.Answers
		if err := json.Unmarshal(raw, &previous); err != nil {
			return "", err
		}
		canonical, err := previous.Canonical()
		if err != nil {
			return "", err
		}
		if bytes.Equal(canonical, answers) {
			return id, nil
		}
	}
	return "", rows.Err()
}
