package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Praveen5612/skill-survey-bot/internal/catalog"
	"github.com/Praveen5612/skill-survey-bot/internal/directory"
	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

// SurveyStore abstracts the persistence operations required by SurveyService.
// Both store backends satisfy it.
type SurveyStore interface {
	InsertSurvey(s *store.Survey) error
	GetSurvey(id string) (*store.Survey, error)
	ListSurveys() ([]*store.Survey, error)
	DeleteSurvey(id string) error
	AddAssignments(surveyID string, userIDs []string) error
	ListAssignees(surveyID string) ([]string, error)
	SurveysForUser(userID string) ([]*store.Survey, error)
	UpsertResponse(r *store.Response) error
	ListResponses(surveyID string) ([]*store.Response, error)
}

// ProcessCatalog is the read-only process lookup used at survey creation.
type ProcessCatalog interface {
	Get(name string) *catalog.Process
}

// UserDirectory is the read-only user lookup used for assignments.
type UserDirectory interface {
	ByID(id string) *directory.User
}

// SurveyService owns the survey/assignment/response contract. All
// referential and payload validation happens here, at the store boundary;
// the backends below it stay dumb.
type SurveyService struct {
	store   SurveyStore
	catalog ProcessCatalog
	users   UserDirectory
	now     func() time.Time
	idGen   func() string
}

func NewSurveyService(st SurveyStore, cat ProcessCatalog, users UserDirectory) *SurveyService {
	return &SurveyService{
		store:   st,
		catalog: cat,
		users:   users,
		now:     func() time.Time { return time.Now().UTC() },
		idGen:   newSurveyID,
	}
}

func newSurveyID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateSurvey allocates an id, persists the survey and returns it. The
// required skill list defaults to the process's suggested skills when left
// empty.
func (s *SurveyService) CreateSurvey(processName string, requiredSkills, questions []string) (*store.Survey, error) {
	processName = strings.TrimSpace(processName)
	if processName == "" {
		return nil, NewInvalidError("process name required")
	}
	proc := s.catalog.Get(processName)
	if proc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcess, processName)
	}
	skills := cleanList(requiredSkills)
	if len(skills) == 0 {
		skills = append([]string(nil), proc.SuggestedSkills...)
	}
	sv := &store.Survey{
		ID:             s.idGen(),
		ProcessName:    proc.Name,
		RequiredSkills: skills,
		Questions:      cleanList(questions),
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// DeleteSurvey removes the survey and cascades to its assignments and
// responses. Deleting an absent survey is not an error.
func (s *SurveyService) DeleteSurvey(id string) error {
	return s.store.DeleteSurvey(id)
}

// AssignSurvey unions userIDs into the survey's assignment set. Every
// referenced user is checked against the directory before anything is
// written, so a single unknown user leaves the set unchanged.
func (s *SurveyService) AssignSurvey(surveyID string, userIDs []string) error {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return err
	}
	if sv == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	ids := cleanList(userIDs)
	if len(ids) == 0 {
		return NewInvalidError("no users to assign")
	}
	for _, uid := range ids {
		if s.users.ByID(uid) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownUser, uid)
		}
	}
	return s.store.AddAssignments(surveyID, ids)
}

// SubmitRequest carries one user's answers to one survey.
type SubmitRequest struct {
	SurveyID        string
	UserID          string
	SelectedSkills  []string
	SkillRatings    map[string]store.Rating
	QuestionAnswers map[string]string
	Comments        string
}

// SubmitResponse validates and upserts the response keyed by
// (survey, user), replacing any prior submission including its timestamp.
// The write is tolerant of the user not being in the assignment set; the
// read path flags that instead.
func (s *SurveyService) SubmitResponse(req SubmitRequest) (*store.Response, error) {
	sv, err := s.store.GetSurvey(req.SurveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, req.SurveyID)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, NewInvalidError("user id required")
	}

	required := map[string]struct{}{}
	for _, sk := range sv.RequiredSkills {
		required[sk] = struct{}{}
	}
	selected := cleanList(req.SelectedSkills)
	selectedSet := map[string]struct{}{}
	for _, sk := range selected {
		if _, ok := required[sk]; !ok {
			return nil, NewInvalidError(fmt.Sprintf("skill %q is not part of this survey", sk))
		}
		selectedSet[sk] = struct{}{}
	}
	for sk, rating := range req.SkillRatings {
		if _, ok := selectedSet[sk]; !ok {
			return nil, NewInvalidError(fmt.Sprintf("rating given for unselected skill %q", sk))
		}
		if !rating.Valid() {
			return nil, NewInvalidError(fmt.Sprintf("invalid rating %q for skill %q (want High, Medium or Low)", rating, sk))
		}
	}

	r := &store.Response{
		SurveyID:        req.SurveyID,
		UserID:          req.UserID,
		SelectedSkills:  selected,
		SkillRatings:    req.SkillRatings,
		QuestionAnswers: req.QuestionAnswers,
		Comments:        req.Comments,
		SubmittedAt:     s.now(),
	}
	if r.SkillRatings == nil {
		r.SkillRatings = map[string]store.Rating{}
	}
	if r.QuestionAnswers == nil {
		r.QuestionAnswers = map[string]string{}
	}
	if err := s.store.UpsertResponse(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListSurveys returns all surveys in creation order.
func (s *SurveyService) ListSurveys() ([]*store.Survey, error) {
	return s.store.ListSurveys()
}

// GetSurvey returns the survey or ErrUnknownSurvey.
func (s *SurveyService) GetSurvey(id string) (*store.Survey, error) {
	sv, err := s.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, id)
	}
	return sv, nil
}

// SurveysForUser returns the surveys assigned to the user.
func (s *SurveyService) SurveysForUser(userID string) ([]*store.Survey, error) {
	return s.store.SurveysForUser(userID)
}

// Assignees returns the survey's assignment set.
func (s *SurveyService) Assignees(surveyID string) ([]string, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	return s.store.ListAssignees(surveyID)
}

// ResponseView pairs a stored response with its read-path flags.
type ResponseView struct {
	*store.Response
	// Unassigned marks a response from a user who is not (or no longer) in
	// the survey's assignment set. Such orphans are reported, not dropped.
	Unassigned bool `json:"unassigned,omitempty"`
}

// Responses returns a survey's responses in submission order, flagging any
// respondent outside the assignment set.
func (s *SurveyService) Responses(surveyID string) ([]ResponseView, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurvey, surveyID)
	}
	assignees, err := s.store.ListAssignees(surveyID)
	if err != nil {
		return nil, err
	}
	assigned := map[string]struct{}{}
	for _, uid := range assignees {
		assigned[uid] = struct{}{}
	}
	rs, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	out := make([]ResponseView, 0, len(rs))
	for _, r := range rs {
		_, ok := assigned[r.UserID]
		out = append(out, ResponseView{Response: r, Unassigned: !ok})
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := []string{}
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
