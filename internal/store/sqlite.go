package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS surveys (
	id              TEXT PRIMARY KEY,
	process_name    TEXT NOT NULL,
	required_skills TEXT NOT NULL,
	questions       TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	seq             INTEGER
);
CREATE TABLE IF NOT EXISTS assignments (
	survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	PRIMARY KEY (survey_id, user_id)
);
CREATE TABLE IF NOT EXISTS responses (
	survey_id        TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
	user_id          TEXT NOT NULL,
	selected_skills  TEXT NOT NULL,
	skill_ratings    TEXT NOT NULL,
	question_answers TEXT NOT NULL,
	comments         TEXT NOT NULL,
	submitted_at     TEXT NOT NULL,
	PRIMARY KEY (survey_id, user_id)
);
`

// SQLiteStore is the alternative Store backend for installations that prefer
// a database file over the JSON document. Semantics match FileStore; the
// cascade on survey deletion is enforced by foreign keys.
type SQLiteStore struct {
	db  *sql.DB
	seq int64
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("apply sqlite pragma: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM surveys").Scan(&s.seq); err != nil {
		return nil, err
	}
	return s, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(raw string) []string {
	var out []string
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func (s *SQLiteStore) InsertSurvey(sv *Survey) error {
	skills, err := encodeJSON(sv.RequiredSkills)
	if err != nil {
		return err
	}
	questions, err := encodeJSON(sv.Questions)
	if err != nil {
		return err
	}
	s.seq++
	_, err = s.db.Exec(
		"INSERT INTO surveys (id, process_name, required_skills, questions, created_at, seq) VALUES (?, ?, ?, ?, ?, ?)",
		sv.ID, sv.ProcessName, skills, questions, sv.CreatedAt.Format(time.RFC3339Nano), s.seq,
	)
	return err
}

func (s *SQLiteStore) scanSurvey(row interface{ Scan(...any) error }) (*Survey, error) {
	var sv Survey
	var skills, questions, created string
	if err := row.Scan(&sv.ID, &sv.ProcessName, &skills, &questions, &created); err != nil {
		return nil, err
	}
	sv.RequiredSkills = decodeStrings(skills)
	sv.Questions = decodeStrings(questions)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	sv.CreatedAt = t
	return &sv, nil
}

const surveyColumns = "id, process_name, required_skills, questions, created_at"

func (s *SQLiteStore) GetSurvey(id string) (*Survey, error) {
	row := s.db.QueryRow("SELECT "+surveyColumns+" FROM surveys WHERE id = ?", id)
	sv, err := s.scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sv, err
}

func (s *SQLiteStore) listSurveysWhere(query string, args ...any) ([]*Survey, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Survey{}
	for rows.Next() {
		sv, err := s.scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSurveys() ([]*Survey, error) {
	return s.listSurveysWhere("SELECT " + surveyColumns + " FROM surveys ORDER BY seq")
}

func (s *SQLiteStore) DeleteSurvey(id string) error {
	_, err := s.db.Exec("DELETE FROM surveys WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) AddAssignments(surveyID string, userIDs []string) error {
	for _, uid := range userIDs {
		if _, err := s.db.Exec(
			"INSERT OR IGNORE INTO assignments (survey_id, user_id) VALUES (?, ?)",
			surveyID, uid,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListAssignees(surveyID string) ([]string, error) {
	rows, err := s.db.Query("SELECT user_id FROM assignments WHERE survey_id = ? ORDER BY rowid", surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SurveysForUser(userID string) ([]*Survey, error) {
	return s.listSurveysWhere(
		"SELECT "+surveyColumns+" FROM surveys WHERE id IN (SELECT survey_id FROM assignments WHERE user_id = ?) ORDER BY seq",
		userID,
	)
}

func (s *SQLiteStore) UpsertResponse(r *Response) error {
	selected, err := encodeJSON(r.SelectedSkills)
	if err != nil {
		return err
	}
	ratings, err := encodeJSON(r.SkillRatings)
	if err != nil {
		return err
	}
	answers, err := encodeJSON(r.QuestionAnswers)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO responses (survey_id, user_id, selected_skills, skill_ratings, question_answers, comments, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (survey_id, user_id) DO UPDATE SET
			selected_skills = excluded.selected_skills,
			skill_ratings = excluded.skill_ratings,
			question_answers = excluded.question_answers,
			comments = excluded.comments,
			submitted_at = excluded.submitted_at`,
		r.SurveyID, r.UserID, selected, ratings, answers, r.Comments, r.SubmittedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) ListResponses(surveyID string) ([]*Response, error) {
	rows, err := s.db.Query(
		"SELECT survey_id, user_id, selected_skills, skill_ratings, question_answers, comments, submitted_at FROM responses WHERE survey_id = ?",
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Response{}
	for rows.Next() {
		var r Response
		var selected, ratings, answers, submitted string
		if err := rows.Scan(&r.SurveyID, &r.UserID, &selected, &ratings, &answers, &r.Comments, &submitted); err != nil {
			return nil, err
		}
		r.SelectedSkills = decodeStrings(selected)
		if err := json.Unmarshal([]byte(ratings), &r.SkillRatings); err != nil {
			return nil, fmt.Errorf("decode skill ratings: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &r.QuestionAnswers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, submitted)
		if err != nil {
			return nil, fmt.Errorf("parse submitted_at: %w", err)
		}
		r.SubmittedAt = t
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RFC3339Nano trims trailing zeros, so the column does not sort
	// chronologically as text. Order in memory instead.
	sortResponses(out)
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
