package services

import (
	"sort"
	"strings"

	"github.com/Praveen5612/skill-survey-bot/internal/resumes"
)

// ResumeSource provides the resume set, read fresh on every call; resume
// files are small and never cached or mutated here.
type ResumeSource interface {
	Load() ([]resumes.Resume, error)
}

// MatchService cross-references missing skills against resume text to
// suggest candidates.
type MatchService struct {
	gaps   *GapService
	source ResumeSource
}

func NewMatchService(gaps *GapService, source ResumeSource) *MatchService {
	return &MatchService{gaps: gaps, source: source}
}

// Match is one resume's hit count for a skill.
type Match struct {
	ResumeID string `json:"resume_id"`
	Count    int    `json:"count"`
}

// CountOccurrences counts case-insensitive, non-overlapping occurrences of
// skill within text. An empty skill matches nothing.
func CountOccurrences(skill, text string) int {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(skill))
}

// FindCandidates returns resumes containing the skill, sorted by occurrence
// count descending with ties broken by resume id ascending. Resumes with
// zero occurrences are excluded.
func (s *MatchService) FindCandidates(skill string) ([]Match, error) {
	rs, err := s.source.Load()
	if err != nil {
		return nil, err
	}
	return matchResumes(skill, rs), nil
}

func matchResumes(skill string, rs []resumes.Resume) []Match {
	out := []Match{}
	for _, r := range rs {
		if n := CountOccurrences(skill, r.Text); n > 0 {
			out = append(out, Match{ResumeID: r.ID, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ResumeID < out[j].ResumeID
	})
	return out
}

// SkillMatches groups match results for one missing skill. When direct text
// search finds nothing, Fallback lists resumes whose extracted skill tokens
// mention the skill instead.
type SkillMatches struct {
	Skill    string   `json:"skill"`
	Matches  []Match  `json:"matches"`
	Fallback []string `json:"fallback,omitempty"`
}

// FindCandidatesForMissing runs candidate matching for every missing skill
// of the survey, in missing-skill order.
func (s *MatchService) FindCandidatesForMissing(surveyID string) ([]SkillMatches, error) {
	missing, err := s.gaps.MissingSkills(surveyID)
	if err != nil {
		return nil, err
	}
	rs, err := s.source.Load()
	if err != nil {
		return nil, err
	}
	out := make([]SkillMatches, 0, len(missing))
	for _, skill := range missing {
		sm := SkillMatches{Skill: skill, Matches: matchResumes(skill, rs)}
		if len(sm.Matches) == 0 {
			sm.Fallback = fallbackCandidates(skill, rs)
		}
		out = append(out, sm)
	}
	return out, nil
}

// fallbackCandidates matches against the skills extracted from each resume
// ("Skills:" line or token heuristic), case-insensitively.
func fallbackCandidates(skill string, rs []resumes.Resume) []string {
	want := strings.ToLower(strings.TrimSpace(skill))
	out := []string{}
	for _, r := range rs {
		for _, got := range resumes.ExtractSkills(r.Text) {
			if strings.ToLower(got) == want {
				out = append(out, r.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
