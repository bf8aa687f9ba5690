package services

import (
	"fmt"
	"sort"

	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

// GapStore is the read-only slice of the store needed for gap analysis.
type GapStore interface {
	GetSurvey(id string) (*store.Survey, error)
	ListResponses(surveyID string) ([]*store.Response, error)
}

// GapService computes skill coverage over a survey's responses. All methods
// are pure reads; orphaned data (ratings for skills outside the survey's
// required list) is tolerated and counted as given.
type GapService struct {
	store GapStore
}

func NewGapService(st GapStore) *GapService { return &GapService{store: st} }

// RatingCounts tallies one skill's self-reported levels.
type RatingCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// AggregateRatings counts, per skill, how many respondents rated themselves
// High, Medium and Low. Skills no response rated are omitted entirely
// rather than reported with zero counts.
func (s *GapService) AggregateRatings(surveyID string) (map[string]RatingCounts, error) {
	rs, err := s.responses(surveyID)
	if err != nil {
		return nil, err
	}
	out := map[string]RatingCounts{}
	for _, r := range rs {
		for skill, rating := range r.SkillRatings {
			c := out[skill]
			switch rating {
			case store.RatingHigh:
				c.High++
			case store.RatingMedium:
				c.Medium++
			case store.RatingLow:
				c.Low++
			default:
				continue
			}
			c.Total++
			out[skill] = c
		}
	}
	return out, nil
}

// AvailableSkills returns the union of selected skills across the survey's
// responses, sorted ascending.
func (s *GapService) AvailableSkills(surveyID string) ([]string, error) {
	rs, err := s.responses(surveyID)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, r := range rs {
		for _, skill := range r.SelectedSkills {
			set[skill] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for skill := range set {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out, nil
}

// MissingSkills returns required skills no respondent selected, preserving
// the survey's required-skill order. The comparison is case-sensitive on
// the exact skill string; there is no fuzzy matching. A survey with no
// responses is missing everything it requires.
func (s *GapService) MissingSkills(surveyID string) ([]string, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	rs, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	available := map[string]struct{}{}
	for _, r := range rs {
		for _, skill := range r.SelectedSkills {
			available[skill] = struct{}{}
		}
	}
	missing := []string{}
	for _, skill := range sv.RequiredSkills {
		if _, ok := available[skill]; !ok {
			missing = append(missing, skill)
		}
	}
	return missing, nil
}

// GapSummary is the dashboard view for one survey.
type GapSummary struct {
	SurveyID        string                  `json:"survey_id"`
	ProcessName     string                  `json:"process"`
	RequiredSkills  []string                `json:"required_skills"`
	TotalResponses  int                     `json:"total_responses"`
	Ratings         map[string]RatingCounts `json:"ratings"`
	AvailableSkills []string                `json:"available_skills"`
	MissingSkills   []string                `json:"missing_skills"`
}

// Summary bundles aggregation, availability and the gap for one survey.
func (s *GapService) Summary(surveyID string) (*GapSummary, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	rs, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.AggregateRatings(surveyID)
	if err != nil {
		return nil, err
	}
	available, err := s.AvailableSkills(surveyID)
	if err != nil {
		return nil, err
	}
	missing, err := s.MissingSkills(surveyID)
	if err != nil {
		return nil, err
	}
	return &GapSummary{
		SurveyID:        sv.ID,
		ProcessName:     sv.ProcessName,
		RequiredSkills:  sv.RequiredSkills,
		TotalResponses:  len(rs),
		Ratings:         ratings,
		AvailableSkills: available,
		MissingSkills:   missing,
	}, nil
}

func (s *GapService) responses(surveyID string) ([]*store.Response, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	return s.store.ListResponses(surveyID)
}
