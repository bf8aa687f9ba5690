package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

// ExportStore is the read-only slice of the store needed for exports.
type ExportStore interface {
	GetSurvey(id string) (*store.Survey, error)
	ListResponses(surveyID string) ([]*store.Response, error)
}

// ExportResult is a rendered file ready to hand to the transport layer.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService flattens a survey's responses into tabular form. Output is
// deterministic for a given store state: responses in submission order,
// fields in the survey's skill/question order.
type ExportService struct {
	store ExportStore
	users UserDirectory
}

func NewExportService(st ExportStore, users UserDirectory) *ExportService {
	return &ExportService{store: st, users: users}
}

// LongRows builds the long-format rows for one survey: one row per skill
// rating, one per question answer, plus a comments row when present.
func (s *ExportService) LongRows(surveyID string) ([]LongRow, error) {
	sv, rs, err := s.load(surveyID)
	if err != nil {
		return nil, err
	}
	rows := []LongRow{}
	for _, r := range rs {
		email := s.userEmail(r.UserID)
		at := r.SubmittedAt.Format(time.RFC3339)
		for _, skill := range ratedSkills(sv, r) {
			rows = append(rows, LongRow{
				SurveyID:    sv.ID,
				UserEmail:   email,
				Field:       skill,
				Value:       string(r.SkillRatings[skill]),
				SubmittedAt: at,
			})
		}
		for _, q := range answeredQuestions(sv, r) {
			rows = append(rows, LongRow{
				SurveyID:    sv.ID,
				UserEmail:   email,
				Field:       q,
				Value:       r.QuestionAnswers[q],
				SubmittedAt: at,
			})
		}
		if r.Comments != "" {
			rows = append(rows, LongRow{
				SurveyID:    sv.ID,
				UserEmail:   email,
				Field:       "comments",
				Value:       r.Comments,
				SubmittedAt: at,
			})
		}
	}
	return rows, nil
}

// ExportCSV renders the survey's responses as CSV in the requested format,
// "long" (default) or "wide" (one row per response with has_/rating_
// columns per required skill).
func (s *ExportService) ExportCSV(surveyID, format string) (*ExportResult, error) {
	if format == "" {
		format = "long"
	}
	switch format {
	case "long":
		rows, err := s.LongRows(surveyID)
		if err != nil {
			return nil, err
		}
		b, err := ExportLongCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("responses_%s_long.csv", surveyID),
			ContentType: "text/csv; charset=utf-8",
			Data:        b,
		}, nil
	case "wide":
		header, records, err := s.wideTable(surveyID)
		if err != nil {
			return nil, err
		}
		b, err := ExportWideCSV(header, records)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("responses_%s_wide.csv", surveyID),
			ContentType: "text/csv; charset=utf-8",
			Data:        b,
		}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}

func (s *ExportService) wideTable(surveyID string) ([]string, [][]string, error) {
	sv, rs, err := s.load(surveyID)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"user_email", "submitted_at", "comments"}
	for _, skill := range sv.RequiredSkills {
		header = append(header, "has_"+skill, "rating_"+skill)
	}
	header = append(header, sv.Questions...)

	records := make([][]string, 0, len(rs))
	for _, r := range rs {
		selected := map[string]struct{}{}
		for _, sk := range r.SelectedSkills {
			selected[sk] = struct{}{}
		}
		rec := []string{s.userEmail(r.UserID), r.SubmittedAt.Format(time.RFC3339), r.Comments}
		for _, skill := range sv.RequiredSkills {
			_, has := selected[skill]
			rec = append(rec, strconv.FormatBool(has), string(r.SkillRatings[skill]))
		}
		for _, q := range sv.Questions {
			rec = append(rec, r.QuestionAnswers[q])
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func (s *ExportService) load(surveyID string) (*store.Survey, []*store.Response, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, nil, err
	}
	if sv == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	rs, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, nil, err
	}
	return sv, rs, nil
}

func (s *ExportService) userEmail(userID string) string {
	if u := s.users.ByID(userID); u != nil {
		return u.Email
	}
	// Orphaned responses keep their raw user id so no data is dropped.
	return userID
}

// ratedSkills returns the response's rated skills in the survey's
// required-skill order, then any orphaned rated skills sorted.
func ratedSkills(sv *store.Survey, r *store.Response) []string {
	out := []string{}
	inSurvey := map[string]struct{}{}
	for _, skill := range sv.RequiredSkills {
		inSurvey[skill] = struct{}{}
		if _, ok := r.SkillRatings[skill]; ok {
			out = append(out, skill)
		}
	}
	extra := []string{}
	for skill := range r.SkillRatings {
		if _, ok := inSurvey[skill]; !ok {
			extra = append(extra, skill)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func answeredQuestions(sv *store.Survey, r *store.Response) []string {
	out := []string{}
	inSurvey := map[string]struct{}{}
	for _, q := range sv.Questions {
		inSurvey[q] = struct{}{}
		if _, ok := r.QuestionAnswers[q]; ok {
			out = append(out, q)
		}
	}
	extra := []string{}
	for q := range r.QuestionAnswers {
		if _, ok := inSurvey[q]; !ok {
			extra = append(extra, q)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
