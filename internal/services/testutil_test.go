package services

import (
	"sort"
	"time"

	"github.com/Praveen5612/skill-survey-bot/internal/catalog"
	"github.com/Praveen5612/skill-survey-bot/internal/directory"
	"github.com/Praveen5612/skill-survey-bot/internal/resumes"
	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

// stubStore is an in-memory SurveyStore for service tests. It mirrors the
// real backends: insertion order for surveys, one response per (survey, user),
// responses listed by submission time then user id.
type stubStore struct {
	surveys     []*store.Survey
	assignments map[string][]string
	responses   map[string]map[string]*store.Response
}

func newStubStore() *stubStore {
	return &stubStore{
		assignments: map[string][]string{},
		responses:   map[string]map[string]*store.Response{},
	}
}

func (s *stubStore) InsertSurvey(sv *store.Survey) error {
	s.surveys = append(s.surveys, sv)
	return nil
}

func (s *stubStore) GetSurvey(id string) (*store.Survey, error) {
	for _, sv := range s.surveys {
		if sv.ID == id {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListSurveys() ([]*store.Survey, error) {
	return append([]*store.Survey(nil), s.surveys...), nil
}

func (s *stubStore) DeleteSurvey(id string) error {
	kept := s.surveys[:0]
	for _, sv := range s.surveys {
		if sv.ID != id {
			kept = append(kept, sv)
		}
	}
	s.surveys = kept
	delete(s.assignments, id)
	delete(s.responses, id)
	return nil
}

func (s *stubStore) AddAssignments(surveyID string, userIDs []string) error {
	seen := map[string]struct{}{}
	for _, uid := range s.assignments[surveyID] {
		seen[uid] = struct{}{}
	}
	for _, uid := range userIDs {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		s.assignments[surveyID] = append(s.assignments[surveyID], uid)
	}
	return nil
}

func (s *stubStore) ListAssignees(surveyID string) ([]string, error) {
	return append([]string(nil), s.assignments[surveyID]...), nil
}

func (s *stubStore) SurveysForUser(userID string) ([]*store.Survey, error) {
	out := []*store.Survey{}
	for _, sv := range s.surveys {
		for _, uid := range s.assignments[sv.ID] {
			if uid == userID {
				out = append(out, sv)
				break
			}
		}
	}
	return out, nil
}

func (s *stubStore) UpsertResponse(r *store.Response) error {
	byUser := s.responses[r.SurveyID]
	if byUser == nil {
		byUser = map[string]*store.Response{}
		s.responses[r.SurveyID] = byUser
	}
	byUser[r.UserID] = r
	return nil
}

func (s *stubStore) ListResponses(surveyID string) ([]*store.Response, error) {
	out := []*store.Response{}
	for _, r := range s.responses[surveyID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type stubCatalog map[string]*catalog.Process

func (c stubCatalog) Get(name string) *catalog.Process { return c[name] }

type stubDirectory map[string]*directory.User

func (d stubDirectory) ByID(id string) *directory.User { return d[id] }

func (d stubDirectory) ByEmail(email string) *directory.User {
	for _, u := range d {
		if u.Email == email {
			return u
		}
	}
	return nil
}

type stubResumes []resumes.Resume

func (s stubResumes) Load() ([]resumes.Resume, error) { return []resumes.Resume(s), nil }

// newFixedSurveyService wires a SurveyService with a deterministic clock and
// id sequence so tests can assert on generated values.
func newFixedSurveyService(st SurveyStore, cat ProcessCatalog, users UserDirectory) (*SurveyService, *time.Time) {
	svc := NewSurveyService(st, cat, users)
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	n := 0
	svc.idGen = func() string {
		n++
		return "sv" + string(rune('0'+n))
	}
	return svc, &clock
}

func testCatalog() stubCatalog {
	return stubCatalog{
		"Order to Cash": {
			Name:            "Order to Cash",
			Description:     "Billing and collections",
			SuggestedSkills: []string{"SAP SD", "Excel", "Invoicing"},
		},
	}
}

func testDirectory() stubDirectory {
	return stubDirectory{
		"u1": {ID: "u1", Name: "Asha", Email: "asha@example.com", Role: directory.RoleUser},
		"u2": {ID: "u2", Name: "Ben", Email: "ben@example.com", Role: directory.RoleUser},
		"a1": {ID: "a1", Name: "Root", Email: "root@example.com", Role: directory.RoleAdmin},
	}
}
