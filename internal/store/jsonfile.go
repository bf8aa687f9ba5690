package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// document is the single persisted JSON structure. It must round-trip
// exactly: Load(persist(x)) == x for every valid state.
type document struct {
	Surveys     []*Survey                       `json:"surveys"`
	Assignments map[string][]string             `json:"assignments"`
	Responses   map[string]map[string]*Response `json:"responses"`
}

func emptyDocument() document {
	return document{
		Surveys:     []*Survey{},
		Assignments: map[string][]string{},
		Responses:   map[string]map[string]*Response{},
	}
}

// FileStore keeps the whole store in memory and rewrites the backing JSON
// file on every mutation. Writes go through a temp file + rename so a crash
// never leaves a partially written document behind.
type FileStore struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// OpenFile loads the store at path. A missing file yields an empty store
// (the file is created on first write); unparseable content fails with
// ErrCorruptStore.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, doc: emptyDocument()}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if doc.Surveys == nil {
		doc.Surveys = []*Survey{}
	}
	if doc.Assignments == nil {
		doc.Assignments = map[string][]string{}
	}
	if doc.Responses == nil {
		doc.Responses = map[string]map[string]*Response{}
	}
	s.doc = doc
	return s, nil
}

func (s *FileStore) persist() error {
	b, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) InsertSurvey(sv *Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Surveys = append(s.doc.Surveys, sv)
	return s.persist()
}

func (s *FileStore) GetSurvey(id string) (*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.doc.Surveys {
		if sv.ID == id {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *FileStore) ListSurveys() ([]*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Survey(nil), s.doc.Surveys...), nil
}

func (s *FileStore) DeleteSurvey(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	kept := s.doc.Surveys[:0]
	for _, sv := range s.doc.Surveys {
		if sv.ID == id {
			changed = true
			continue
		}
		kept = append(kept, sv)
	}
	s.doc.Surveys = kept
	if _, ok := s.doc.Assignments[id]; ok {
		delete(s.doc.Assignments, id)
		changed = true
	}
	if _, ok := s.doc.Responses[id]; ok {
		delete(s.doc.Responses, id)
		changed = true
	}
	if !changed {
		return nil
	}
	return s.persist()
}

func (s *FileStore) AddAssignments(surveyID string, userIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.doc.Assignments[surveyID]
	seen := map[string]struct{}{}
	for _, uid := range existing {
		seen[uid] = struct{}{}
	}
	changed := false
	for _, uid := range userIDs {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		existing = append(existing, uid)
		changed = true
	}
	if !changed {
		return nil
	}
	s.doc.Assignments[surveyID] = existing
	return s.persist()
}

func (s *FileStore) ListAssignees(surveyID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.doc.Assignments[surveyID]...), nil
}

func (s *FileStore) SurveysForUser(userID string) ([]*Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assigned := map[string]struct{}{}
	for sid, uids := range s.doc.Assignments {
		for _, uid := range uids {
			if uid == userID {
				assigned[sid] = struct{}{}
				break
			}
		}
	}
	out := []*Survey{}
	for _, sv := range s.doc.Surveys {
		if _, ok := assigned[sv.ID]; ok {
			out = append(out, sv)
		}
	}
	return out, nil
}

func (s *FileStore) UpsertResponse(r *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := s.doc.Responses[r.SurveyID]
	if byUser == nil {
		byUser = map[string]*Response{}
		s.doc.Responses[r.SurveyID] = byUser
	}
	byUser[r.UserID] = r
	return s.persist()
}

func (s *FileStore) ListResponses(surveyID string) ([]*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byUser := s.doc.Responses[surveyID]
	out := make([]*Response, 0, len(byUser))
	for _, r := range byUser {
		out = append(out, r)
	}
	sortResponses(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// sortResponses orders by submission time, then user id, which is the
// canonical read/export order for a survey's responses.
func sortResponses(rs []*Response) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].SubmittedAt.Equal(rs[j].SubmittedAt) {
			return rs[i].SubmittedAt.Before(rs[j].SubmittedAt)
		}
		return rs[i].UserID < rs[j].UserID
	})
}
